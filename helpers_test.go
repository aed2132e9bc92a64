package membership_test

import (
	"context"
	"database/sql"
	"testing"

	membership "github.com/graphstore/go-membership"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateLogins = `CREATE TABLE logins (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash BLOB,
    password_salt BLOB,
    password_iterations INTEGER NOT NULL DEFAULT 0,
    password_question TEXT,
    password_answer_hash BLOB,
    password_answer_salt BLOB,
    password_answer_iterations INTEGER NOT NULL DEFAULT 0,
    comments TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    is_activated BOOLEAN NOT NULL DEFAULT FALSE,
    is_locked_out BOOLEAN NOT NULL DEFAULT FALSE,
    login_attempts INTEGER NOT NULL DEFAULT 0,
    roles TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_active TIMESTAMP,
    last_login_at TIMESTAMP,
    last_locked_out_at TIMESTAMP,
    last_locked_out_reason TEXT,
    deleted_at TIMESTAMP NULL
);`

// partial indexes: uniqueness applies to non-deleted records only, a
// soft-deleted login frees its username and email for reuse
const (
	sqliteCreateUsernameIndex = `CREATE UNIQUE INDEX uq_logins_username ON logins (username) WHERE deleted_at IS NULL;`
	sqliteCreateEmailIndex    = `CREATE UNIQUE INDEX uq_logins_email ON logins (email) WHERE deleted_at IS NULL;`
)

func setupStore(t *testing.T) (*bun.DB, membership.RepositoryManager, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, stmt := range []string{
		sqliteCreateLogins,
		sqliteCreateUsernameIndex,
		sqliteCreateEmailIndex,
	} {
		_, err = bunDB.Exec(stmt)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return bunDB, membership.NewRepositoryManager(bunDB), cleanup
}

func testConfig() membership.Config {
	cfg := membership.DefaultConfig("UnitTesting", "file::memory:?cache=shared")
	// keep derivations cheap, the hashing properties get their own tests
	cfg.MinPasswordHashIterations = 64
	cfg.MaxPasswordHashIterations = 128
	return cfg
}

func setupProvider(t *testing.T) (*membership.Provider, *bun.DB, membership.RepositoryManager, func()) {
	t.Helper()

	bunDB, repo, cleanup := setupStore(t)

	provider, err := membership.NewProvider(testConfig(), repo)
	require.NoError(t, err)

	return provider, bunDB, repo, cleanup
}

func setupRoleProvider(t *testing.T) (*membership.RoleProvider, *membership.Provider, *bun.DB, func()) {
	t.Helper()

	provider, bunDB, repo, cleanup := setupProvider(t)

	roles, err := membership.NewRoleProvider(testConfig(), repo)
	require.NoError(t, err)

	return roles, provider, bunDB, cleanup
}

func mustCreateUser(t *testing.T, provider *membership.Provider, username, password, email string) *membership.Login {
	t.Helper()

	login, status := provider.CreateUser(context.Background(), membership.CreateUserInput{
		Username:   username,
		Password:   password,
		Email:      email,
		IsApproved: true,
	})
	require.Equal(t, membership.CreateStatusSuccess, status)
	require.NotNil(t, login)

	return login
}
