package membership

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Defaults applied by DefaultConfig
const (
	DefaultMaxInvalidPasswordAttempts           = 10
	DefaultPasswordAttemptWindow                = 10
	DefaultMinRequiredPasswordLength            = 6
	DefaultMinRequiredNonalphanumericCharacters = 1
	DefaultMinPasswordHashIterations            = 4096
	DefaultMaxPasswordHashIterations            = 32768
)

// Config holds the membership provider options. Populate it once at process
// start from whatever source is appropriate and validate it eagerly: a
// missing ApplicationName or ConnectionString is a construction error, not a
// runtime error.
type Config struct {
	ApplicationName                      string
	ConnectionString                     string
	MaxInvalidPasswordAttempts           int
	PasswordAttemptWindow                int
	MinRequiredPasswordLength            int
	MinRequiredNonalphanumericCharacters int
	EnablePasswordReset                  bool
	PasswordStrengthRegularExpression    string
	RequiresUniqueEmail                  bool
	RequiresQuestionAndAnswer            bool
	MinPasswordHashIterations            int
	MaxPasswordHashIterations            int
}

// DefaultConfig returns a Config with the documented defaults applied
func DefaultConfig(applicationName, connectionString string) Config {
	return Config{
		ApplicationName:                      applicationName,
		ConnectionString:                     connectionString,
		MaxInvalidPasswordAttempts:           DefaultMaxInvalidPasswordAttempts,
		PasswordAttemptWindow:                DefaultPasswordAttemptWindow,
		MinRequiredPasswordLength:            DefaultMinRequiredPasswordLength,
		MinRequiredNonalphanumericCharacters: DefaultMinRequiredNonalphanumericCharacters,
		EnablePasswordReset:                  true,
		RequiresUniqueEmail:                  true,
		MinPasswordHashIterations:            DefaultMinPasswordHashIterations,
		MaxPasswordHashIterations:            DefaultMaxPasswordHashIterations,
	}
}

// Validate checks the configuration. Called by NewProvider and
// NewRoleProvider before anything touches the store.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ApplicationName, validation.Required),
		validation.Field(&c.ConnectionString, validation.Required),
		validation.Field(&c.MinRequiredPasswordLength, validation.Min(1)),
		validation.Field(&c.MinRequiredNonalphanumericCharacters, validation.Min(0)),
		validation.Field(&c.MinPasswordHashIterations, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxPasswordHashIterations, validation.Required, validation.Min(c.MinPasswordHashIterations)),
		validation.Field(&c.PasswordStrengthRegularExpression, validation.By(validRegexp)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid membership configuration")
	}
	return nil
}

func validRegexp(value any) error {
	expr, _ := value.(string)
	if expr == "" {
		return nil
	}
	_, err := regexp.Compile(expr)
	return err
}
