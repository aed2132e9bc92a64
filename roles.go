package membership

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleStandard:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a RoleName
func ParseRole(roleStr string) (RoleName, bool) {
	role := RoleName(roleStr)
	return role, IsValidRole(role)
}

// RoleProvider implements role membership over the fixed role set
// {admin, editor, standard}. Roles are not created or destroyed at runtime.
type RoleProvider struct {
	config       Config
	repo         RepositoryManager
	logger       Logger
	activitySink ActivitySink
}

var _ RoleRegistry = (*RoleProvider)(nil)

// NewRoleProvider returns a new RoleProvider. The configuration is validated
// eagerly, same as NewProvider.
func NewRoleProvider(config Config, repo RepositoryManager) (*RoleProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := repo.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid repository manager")
	}

	return &RoleProvider{
		config:       config,
		repo:         repo,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}, nil
}

func (r *RoleProvider) WithLogger(logger Logger) *RoleProvider {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithActivitySink configures an ActivitySink for emitting audit events.
func (r *RoleProvider) WithActivitySink(sink ActivitySink) *RoleProvider {
	r.activitySink = normalizeActivitySink(sink)
	return r
}

// GetRolesForUser returns the role names the user is a member of, or nil
// when the username matches no active login.
func (r *RoleProvider) GetRolesForUser(ctx context.Context, username string) ([]string, error) {
	if username == "" {
		return nil, goerrors.New("username is required", goerrors.CategoryValidation)
	}

	login, err := r.repo.Logins().GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, WrapStorageError(err, "failed to look up login")
	}

	if login.Roles == nil {
		return []string{}, nil
	}

	return login.Roles, nil
}

// AddUsersToRoles grants each role to each existing user. Granting an
// already-held role is a no-op; unknown usernames are skipped. Role names
// outside the fixed set are rejected before anything is written.
func (r *RoleProvider) AddUsersToRoles(ctx context.Context, usernames, roles []string) error {
	if err := validateRoleNames(roles); err != nil {
		return err
	}

	granted := map[string]string{}

	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, username := range usernames {
			login, err := r.repo.Logins().GetByUsernameTx(ctx, tx, username)
			if err != nil {
				if repository.IsRecordNotFound(err) {
					continue
				}
				return err
			}

			changed := false
			for _, role := range roles {
				if login.AddRole(role) {
					changed = true
				}
			}

			if !changed {
				continue
			}

			if err := r.repo.Logins().UpdateRolesTx(ctx, tx, login); err != nil {
				return err
			}
			granted[username] = login.ID.String()
		}
		return nil
	})

	if err != nil {
		return WrapStorageError(err, "failed to add users to roles")
	}

	for username, id := range granted {
		r.emitEvent(ctx, ActivityEventRoleGranted, username, id, map[string]any{
			"roles": roles,
		})
	}

	return nil
}

// RemoveUsersFromRoles revokes each role from each existing user. Revoking a
// role the user does not hold is a no-op; unknown usernames are skipped.
func (r *RoleProvider) RemoveUsersFromRoles(ctx context.Context, usernames, roles []string) error {
	if err := validateRoleNames(roles); err != nil {
		return err
	}

	revoked := map[string]string{}

	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, username := range usernames {
			login, err := r.repo.Logins().GetByUsernameTx(ctx, tx, username)
			if err != nil {
				if repository.IsRecordNotFound(err) {
					continue
				}
				return err
			}

			changed := false
			for _, role := range roles {
				if login.RemoveRole(role) {
					changed = true
				}
			}

			if !changed {
				continue
			}

			if err := r.repo.Logins().UpdateRolesTx(ctx, tx, login); err != nil {
				return err
			}
			revoked[username] = login.ID.String()
		}
		return nil
	})

	if err != nil {
		return WrapStorageError(err, "failed to remove users from roles")
	}

	for username, id := range revoked {
		r.emitEvent(ctx, ActivityEventRoleRevoked, username, id, map[string]any{
			"roles": roles,
		})
	}

	return nil
}

// IsUserInRole reports whether the user holds the role. Unknown, locked-out,
// and deactivated users are all false; role names compare lower-cased.
func (r *RoleProvider) IsUserInRole(ctx context.Context, username, role string) bool {
	login, err := r.repo.Logins().GetByUsername(ctx, username)
	if err != nil {
		return false
	}

	if login.IsLockedOut || !login.IsActivated {
		return false
	}

	return login.HasRole(strings.ToLower(role))
}

// GetUsersInRole returns the usernames of every active login holding the
// role. Order is not guaranteed.
func (r *RoleProvider) GetUsersInRole(ctx context.Context, role string) ([]string, error) {
	if role == "" {
		return nil, goerrors.New("role is required", goerrors.CategoryValidation)
	}

	// membership lives in a JSON column, so collect the active logins and
	// filter here rather than depending on dialect-specific JSON operators
	logins, err := r.repo.Logins().ListActive(ctx)
	if err != nil {
		return nil, WrapStorageError(err, "failed to list logins")
	}

	usernames := []string{}
	for _, login := range logins {
		if login.HasRole(strings.ToLower(role)) {
			usernames = append(usernames, login.Username)
		}
	}

	return usernames, nil
}

// RoleExists checks the fixed role set
func (r *RoleProvider) RoleExists(role string) bool {
	return IsValidRole(role)
}

// GetAllRoles returns the fixed role set
func (r *RoleProvider) GetAllRoles() []string {
	return []string{RoleAdmin, RoleEditor, RoleStandard}
}

// FindUsersInRole filters the members of role by exact username match, so
// the result carries zero or one element.
func (r *RoleProvider) FindUsersInRole(ctx context.Context, role, usernameToMatch string) ([]string, error) {
	if role == "" {
		return nil, goerrors.New("role is required", goerrors.CategoryValidation)
	}
	if usernameToMatch == "" {
		return nil, goerrors.New("usernameToMatch is required", goerrors.CategoryValidation)
	}

	members, err := r.GetUsersInRole(ctx, role)
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, username := range members {
		if username == usernameToMatch {
			matches = append(matches, username)
		}
	}

	return matches, nil
}

// CreateRole is not supported: the role set is fixed at build time.
func (r *RoleProvider) CreateRole(ctx context.Context, role string) error {
	return ErrNotImplemented
}

// DeleteRole is not supported: the role set is fixed at build time.
func (r *RoleProvider) DeleteRole(ctx context.Context, role string, throwOnPopulatedRole bool) (bool, error) {
	return false, ErrNotImplemented
}

func validateRoleNames(roles []string) error {
	for _, role := range roles {
		if !IsValidRole(strings.ToLower(role)) {
			return ErrUnknownRole
		}
	}
	return nil
}

func (r *RoleProvider) emitEvent(ctx context.Context, eventType ActivityEventType, username, loginID string, metadata map[string]any) {
	sink := normalizeActivitySink(r.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Username:  username,
		LoginID:   loginID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		r.logger.Warn("activity sink record error: %v", err)
	}
}
