package membership_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	membership "github.com/graphstore/go-membership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLogin(t *testing.T, repo membership.RepositoryManager, username, email string) *membership.Login {
	t.Helper()

	login, err := repo.Logins().Create(context.Background(), &membership.Login{
		Username:     username,
		Email:        email,
		PasswordHash: []byte("derived"),
		PasswordSalt: []byte("salt"),
		IsActivated:  true,
	})
	require.NoError(t, err)

	return login
}

func TestLoginsCreateDefaults(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	login := seedLogin(t, repo, "alpha", "alpha@example.com")

	assert.NotEqual(t, uuid.Nil, login.ID, "a missing ID is generated on create")
	assert.Equal(t, membership.LoginStatusActive, login.Status, "a missing status defaults to active")
}

func TestLoginsLookups(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")

	byName, err := repo.Logins().GetByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byName.ID)

	byEmail, err := repo.Logins().GetByEmail(ctx, "alpha@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byEmail.ID)

	_, err = repo.Logins().GetByUsername(ctx, "nobody")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.Logins().GetByEmail(ctx, "nobody@example.com")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestLoginsUniqueConstraints(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seedLogin(t, repo, "alpha", "alpha@example.com")

	_, err := repo.Logins().Create(ctx, &membership.Login{
		Username: "alpha",
		Email:    "other@example.com",
	})
	require.Error(t, err)
	assert.True(t, membership.IsUniqueViolation(err))
	assert.True(t, membership.IsUniqueViolationOn(err, "username"))
	assert.False(t, membership.IsUniqueViolationOn(err, "email"))

	_, err = repo.Logins().Create(ctx, &membership.Login{
		Username: "beta",
		Email:    "alpha@example.com",
	})
	require.Error(t, err)
	assert.True(t, membership.IsUniqueViolationOn(err, "email"))
}

func TestLoginsSoftDelete(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")

	require.NoError(t, repo.Logins().SoftDelete(ctx, seeded))
	assert.Equal(t, membership.LoginStatusDeleted, seeded.Status)
	assert.NotNil(t, seeded.DeletedAt)

	_, err := repo.Logins().GetByUsername(ctx, "alpha")
	assert.True(t, repository.IsRecordNotFound(err), "soft-deleted logins vanish from active lookups")

	active, err := repo.Logins().ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	kept, err := repo.Logins().GetDeleted(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", kept.Username)
	assert.Equal(t, []byte("derived"), kept.PasswordHash)
	assert.Equal(t, membership.LoginStatusDeleted, kept.Status)
}

func TestLoginsSoftDeleteFreesIdentifiers(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	first := seedLogin(t, repo, "alpha", "alpha@example.com")
	require.NoError(t, repo.Logins().SoftDelete(ctx, first))

	// uniqueness applies to live records only
	second := seedLogin(t, repo, "alpha", "alpha@example.com")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLoginsHardDelete(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")

	require.NoError(t, repo.Logins().HardDelete(ctx, seeded))

	_, err := repo.Logins().GetByUsername(ctx, "alpha")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.Logins().GetDeleted(ctx, seeded.ID)
	assert.Error(t, err, "a purged record is gone from the deleted view too")
}

func TestLoginsTrackActivity(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")
	require.Nil(t, seeded.LastActive)

	require.NoError(t, repo.Logins().TrackActivity(ctx, seeded))
	assert.NotNil(t, seeded.LastActive)

	reloaded, err := repo.Logins().GetByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastActive)
}

func TestLoginsClearLockout(t *testing.T) {
	bunDB, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")

	_, err := bunDB.Exec(`UPDATE logins SET is_locked_out = TRUE, login_attempts = 5 WHERE id = ?`, seeded.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Logins().ClearLockout(ctx, seeded))
	assert.False(t, seeded.IsLockedOut)
	assert.Equal(t, 0, seeded.LoginAttempts)

	reloaded, err := repo.Logins().GetByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.False(t, reloaded.IsLockedOut)
	assert.Equal(t, 0, reloaded.LoginAttempts)
}

func TestLoginsUpdateRoles(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedLogin(t, repo, "alpha", "alpha@example.com")

	seeded.AddRole(membership.RoleAdmin)
	seeded.AddRole(membership.RoleEditor)
	require.NoError(t, repo.Logins().UpdateRoles(ctx, seeded))

	reloaded, err := repo.Logins().GetByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "editor"}, reloaded.Roles)

	seeded.RemoveRole(membership.RoleAdmin)
	require.NoError(t, repo.Logins().UpdateRoles(ctx, seeded))

	reloaded, err = repo.Logins().GetByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, reloaded.Roles)
}
