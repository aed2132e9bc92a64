package membership_test

import (
	"testing"

	membership "github.com/graphstore/go-membership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := membership.DefaultConfig("MyApp", "file:membership.db")

	assert.Equal(t, "MyApp", cfg.ApplicationName)
	assert.Equal(t, "file:membership.db", cfg.ConnectionString)
	assert.Equal(t, 10, cfg.MaxInvalidPasswordAttempts)
	assert.Equal(t, 10, cfg.PasswordAttemptWindow)
	assert.Equal(t, 6, cfg.MinRequiredPasswordLength)
	assert.Equal(t, 1, cfg.MinRequiredNonalphanumericCharacters)
	assert.True(t, cfg.EnablePasswordReset)
	assert.True(t, cfg.RequiresUniqueEmail)
	assert.False(t, cfg.RequiresQuestionAndAnswer)
	assert.Empty(t, cfg.PasswordStrengthRegularExpression)
	assert.Equal(t, 4096, cfg.MinPasswordHashIterations)
	assert.Equal(t, 32768, cfg.MaxPasswordHashIterations)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*membership.Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *membership.Config) {},
		},
		{
			name:    "missing application name",
			mutate:  func(c *membership.Config) { c.ApplicationName = "" },
			wantErr: true,
		},
		{
			name:    "missing connection string",
			mutate:  func(c *membership.Config) { c.ConnectionString = "" },
			wantErr: true,
		},
		{
			name: "max iterations below min",
			mutate: func(c *membership.Config) {
				c.MinPasswordHashIterations = 1000
				c.MaxPasswordHashIterations = 100
			},
			wantErr: true,
		},
		{
			name:   "equal iteration bounds",
			mutate: func(c *membership.Config) { c.MinPasswordHashIterations = 8192; c.MaxPasswordHashIterations = 8192 },
		},
		{
			name:    "broken strength expression",
			mutate:  func(c *membership.Config) { c.PasswordStrengthRegularExpression = "([" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := membership.DefaultConfig("UnitTesting", "file::memory:")
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProviderRejectsInvalidConfig(t *testing.T) {
	_, repo, cleanup := setupStore(t)
	defer cleanup()

	cfg := testConfig()
	cfg.ApplicationName = ""

	_, err := membership.NewProvider(cfg, repo)
	assert.Error(t, err)

	_, err = membership.NewRoleProvider(cfg, repo)
	assert.Error(t, err)
}
