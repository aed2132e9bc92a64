package membership

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Membership exposes the account lifecycle operations of the credential store
type Membership interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*Login, CreateStatus)
	GetUser(ctx context.Context, username string, userIsOnline bool) (*Login, error)
	GetUserNameByEmail(ctx context.Context, email string) (string, error)
	ValidateUser(ctx context.Context, username, password string) bool
	UnlockUser(ctx context.Context, username string) (bool, error)
	DeleteUser(ctx context.Context, username string, deleteAllRelatedData bool) (bool, error)
}

// RoleRegistry exposes membership queries and mutations against the fixed
// role set
type RoleRegistry interface {
	GetRolesForUser(ctx context.Context, username string) ([]string, error)
	AddUsersToRoles(ctx context.Context, usernames, roles []string) error
	RemoveUsersFromRoles(ctx context.Context, usernames, roles []string) error
	IsUserInRole(ctx context.Context, username, role string) bool
	GetUsersInRole(ctx context.Context, role string) ([]string, error)
	RoleExists(role string) bool
	GetAllRoles() []string
	FindUsersInRole(ctx context.Context, role, usernameToMatch string) ([]string, error)
	CreateRole(ctx context.Context, role string) error
	DeleteRole(ctx context.Context, role string, throwOnPopulatedRole bool) (bool, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MEMBERSHIP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MEMBERSHIP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
