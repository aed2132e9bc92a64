package membership

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleName is a named group membership drawn from the fixed role set
type RoleName = string

const (
	// RoleAdmin is the administrative role
	RoleAdmin RoleName = "admin"
	// RoleEditor is the content editor role
	RoleEditor RoleName = "editor"
	// RoleStandard is the default role for regular accounts
	RoleStandard RoleName = "standard"
)

// LoginStatus is the lifecycle status of a login record
type LoginStatus = string

const (
	// LoginStatusActive marks a login visible to normal lookups
	LoginStatusActive LoginStatus = "active"
	// LoginStatusDeleted marks a soft-deleted login, hidden from normal
	// lookups but retrievable through the deleted-record view
	LoginStatusDeleted LoginStatus = "deleted"
)

// Login is the account/credential record
type Login struct {
	bun.BaseModel            `bun:"table:logins,alias:lgn"`
	ID                       uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username                 string      `bun:"username,notnull,unique" json:"username,omitempty"`
	Email                    string      `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash             []byte      `bun:"password_hash" json:"-"`
	PasswordSalt             []byte      `bun:"password_salt" json:"-"`
	PasswordIterations       int         `bun:"password_iterations" json:"-"`
	PasswordQuestion         string      `bun:"password_question" json:"password_question,omitempty"`
	PasswordAnswerHash       []byte      `bun:"password_answer_hash" json:"-"`
	PasswordAnswerSalt       []byte      `bun:"password_answer_salt" json:"-"`
	PasswordAnswerIterations int         `bun:"password_answer_iterations" json:"-"`
	Comments                 string      `bun:"comments" json:"comments,omitempty"`
	Status                   LoginStatus `bun:"status,notnull" json:"status,omitempty"`
	IsActivated              bool        `bun:"is_activated" json:"is_activated,omitempty"`
	IsLockedOut              bool        `bun:"is_locked_out" json:"is_locked_out,omitempty"`
	LoginAttempts            int         `bun:"login_attempts" json:"login_attempts,omitempty"`
	Roles                    []string    `bun:"roles" json:"roles,omitempty"`
	CreatedDate              *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastActive               *time.Time  `bun:"last_active,nullzero" json:"last_active,omitempty"`
	LastLoginDate            *time.Time  `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	LastLockedOutDate        *time.Time  `bun:"last_locked_out_at,nullzero" json:"last_locked_out_at,omitempty"`
	LastLockedOutReason      string      `bun:"last_locked_out_reason" json:"last_locked_out_reason,omitempty"`
	DeletedAt                *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the status field for records created before the
// column existed
func (l *Login) EnsureStatus() {
	if l.Status == "" {
		l.Status = LoginStatusActive
	}
}

// HasRole reports whether the login holds the given role. Role names are
// compared lower-cased.
func (l *Login) HasRole(role string) bool {
	role = strings.ToLower(role)
	for _, r := range l.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRole appends the role to the membership set if absent. Returns true if
// the set changed.
func (l *Login) AddRole(role string) bool {
	role = strings.ToLower(role)
	if l.HasRole(role) {
		return false
	}
	l.Roles = append(l.Roles, role)
	return true
}

// RemoveRole drops the role from the membership set if present. Returns true
// if the set changed.
func (l *Login) RemoveRole(role string) bool {
	role = strings.ToLower(role)
	for i, r := range l.Roles {
		if r == role {
			l.Roles = append(l.Roles[:i], l.Roles[i+1:]...)
			return true
		}
	}
	return false
}
