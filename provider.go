package membership

import (
	"context"
	"errors"
	"regexp"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// CreateStatus is the closed outcome set of CreateUser
type CreateStatus string

const (
	CreateStatusSuccess           CreateStatus = "success"
	CreateStatusInvalidPassword   CreateStatus = "invalid_password"
	CreateStatusInvalidEmail      CreateStatus = "invalid_email"
	CreateStatusDuplicateEmail    CreateStatus = "duplicate_email"
	CreateStatusDuplicateUserName CreateStatus = "duplicate_username"
	CreateStatusInvalidQuestion   CreateStatus = "invalid_question"
	CreateStatusInvalidAnswer     CreateStatus = "invalid_answer"
	CreateStatusProviderError     CreateStatus = "provider_error"
)

// CreateUserInput carries everything CreateUser needs for a new account
type CreateUserInput struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Email            string `json:"email"`
	PasswordQuestion string `json:"password_question"`
	PasswordAnswer   string `json:"password_answer"`
	Comments         string `json:"comments"`
	// IsApproved is accepted for provider-contract compatibility. The
	// creation policy currently activates every account.
	IsApproved bool `json:"is_approved"`
	UseHashID  bool
}

// PasswordValidator is the password-policy hook run before any other
// CreateUser validation. A non-nil error rejects the password.
type PasswordValidator func(email, password string) error

// StrengthValidator builds a PasswordValidator from the configured length,
// non-alphanumeric, and regular-expression requirements. Wire it with
// WithPasswordValidator; no policy hook runs by default.
func StrengthValidator(c Config) PasswordValidator {
	var strength *regexp.Regexp
	if c.PasswordStrengthRegularExpression != "" {
		strength = regexp.MustCompile(c.PasswordStrengthRegularExpression)
	}

	return func(email, password string) error {
		if len(password) < c.MinRequiredPasswordLength {
			return goerrors.New("password is shorter than the required minimum", goerrors.CategoryValidation)
		}

		nonAlnum := 0
		for _, r := range password {
			if !isAlnum(r) {
				nonAlnum++
			}
		}
		if nonAlnum < c.MinRequiredNonalphanumericCharacters {
			return goerrors.New("password needs more non-alphanumeric characters", goerrors.CategoryValidation)
		}

		if strength != nil && !strength.MatchString(password) {
			return goerrors.New("password does not match the strength expression", goerrors.CategoryValidation)
		}

		return nil
	}
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Provider implements the account lifecycle over a RepositoryManager
type Provider struct {
	config           Config
	repo             RepositoryManager
	hasher           PasswordHasher
	validatePassword PasswordValidator
	logger           Logger
	activitySink     ActivitySink
}

var _ Membership = (*Provider)(nil)

// NewProvider returns a new membership Provider. The configuration is
// validated eagerly: a missing ApplicationName or ConnectionString fails
// construction.
func NewProvider(config Config, repo RepositoryManager) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := repo.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid repository manager")
	}

	return &Provider{
		config:       config,
		repo:         repo,
		hasher:       DefaultHasher,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}, nil
}

func (p *Provider) WithLogger(logger Logger) *Provider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithActivitySink configures an ActivitySink for emitting audit events.
func (p *Provider) WithActivitySink(sink ActivitySink) *Provider {
	p.activitySink = normalizeActivitySink(sink)
	return p
}

// WithPasswordValidator installs the password-policy hook run first by
// CreateUser.
func (p *Provider) WithPasswordValidator(v PasswordValidator) *Provider {
	p.validatePassword = v
	return p
}

// WithHasher overrides the password hasher (useful for tests that need a
// cheap derivation).
func (p *Provider) WithHasher(h PasswordHasher) *Provider {
	if h != nil {
		p.hasher = h
	}
	return p
}

// Config returns the provider configuration.
func (p *Provider) Config() Config {
	return p.config
}

// errCreateAborted rolls the creation transaction back when a validation
// check fails after the unit of work opened.
var errCreateAborted = errors.New("user creation aborted")

// CreateUser validates the input, derives the credential material, and
// persists the new login in a single unit of work. The first failing check
// wins and nothing is written. Storage failures are reported as
// CreateStatusProviderError with no record returned; no retry is attempted
// here.
func (p *Provider) CreateUser(ctx context.Context, input CreateUserInput) (*Login, CreateStatus) {
	if p.validatePassword != nil {
		if err := p.validatePassword(input.Email, input.Password); err != nil {
			return nil, CreateStatusInvalidPassword
		}
	}

	if input.Email == "" {
		return nil, CreateStatusInvalidEmail
	}

	if input.Password == "" {
		return nil, CreateStatusInvalidPassword
	}

	status := CreateStatusSuccess
	var created *Login

	err := p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if p.config.RequiresUniqueEmail {
			if _, err := p.repo.Logins().GetByEmailTx(ctx, tx, input.Email); err == nil {
				status = CreateStatusDuplicateEmail
				return errCreateAborted
			} else if !repository.IsRecordNotFound(err) {
				return err
			}
		}

		if _, err := p.repo.Logins().GetByUsernameTx(ctx, tx, input.Username); err == nil {
			status = CreateStatusDuplicateUserName
			return errCreateAborted
		} else if !repository.IsRecordNotFound(err) {
			return err
		}

		if p.config.RequiresQuestionAndAnswer &&
			(input.PasswordQuestion == "" || input.PasswordAnswer == "") {
			if input.PasswordQuestion == "" {
				status = CreateStatusInvalidQuestion
			} else {
				status = CreateStatusInvalidAnswer
			}
			return errCreateAborted
		}

		salt, err := p.hasher.GenerateSalt()
		if err != nil {
			return err
		}

		iterations, err := p.hasher.PickIterationCount(
			p.config.MinPasswordHashIterations,
			p.config.MaxPasswordHashIterations,
		)
		if err != nil {
			return err
		}

		now := time.Now()
		login := &Login{
			Username:           input.Username,
			Email:              input.Email,
			Comments:           input.Comments,
			PasswordSalt:       salt,
			PasswordHash:       p.hasher.DeriveKey(input.Password, salt, iterations),
			PasswordIterations: iterations,
			Status:             LoginStatusActive,
			IsActivated:        true,
			IsLockedOut:        false,
			CreatedDate:        &now,
			LastActive:         &now,
			LastLoginDate:      &now,
			LastLockedOutDate:  &now,
		}

		// the secondary challenge reuses the password salt and cost factor,
		// matching the stored-data shape existing deployments rely on
		if input.PasswordQuestion != "" && input.PasswordAnswer != "" {
			login.PasswordQuestion = input.PasswordQuestion
			login.PasswordAnswerHash = p.hasher.DeriveKey(input.PasswordAnswer, salt, iterations)
			login.PasswordAnswerSalt = salt
			login.PasswordAnswerIterations = iterations
		}

		if input.UseHashID {
			if id, err := hashid.NewUUID(input.Username); err == nil {
				login.ID = id
			}
		}

		created, err = p.repo.Logins().CreateTx(ctx, tx, login)
		if err != nil {
			// the store-level unique constraint closes the check-then-insert
			// race with concurrent creations
			if IsUniqueViolationOn(err, "email") {
				status = CreateStatusDuplicateEmail
				return errCreateAborted
			}
			if IsUniqueViolation(err) {
				status = CreateStatusDuplicateUserName
				return errCreateAborted
			}
			return err
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, errCreateAborted) {
			return nil, status
		}
		p.logger.Error("CreateUser persistence failure", "error", err)
		return nil, CreateStatusProviderError
	}

	p.emitEvent(ctx, ActivityEventLoginCreated, created.Username, created.ID.String(), nil)

	return created, CreateStatusSuccess
}

// GetUser finds an active login by username. When userIsOnline is set the
// LastActive timestamp is updated in the same unit of work. Unknown or empty
// usernames return nil without error.
func (p *Provider) GetUser(ctx context.Context, username string, userIsOnline bool) (*Login, error) {
	if username == "" {
		return nil, nil
	}

	var login *Login
	err := p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := p.repo.Logins().GetByUsernameTx(ctx, tx, username)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		if userIsOnline {
			if err := p.repo.Logins().TrackActivityTx(ctx, tx, record); err != nil {
				return err
			}
		}

		login = record
		return nil
	})

	if err != nil {
		return nil, WrapStorageError(err, "failed to look up login")
	}

	return login, nil
}

// GetUserNameByEmail returns the username of the login matching email, or
// the empty string when there is none. Empty string is the not-found
// sentinel, not an error.
func (p *Provider) GetUserNameByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}

	login, err := p.repo.Logins().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil
		}
		return "", WrapStorageError(err, "failed to look up login by email")
	}

	return login.Username, nil
}

// ValidateUser checks a username/password pair. Unknown users, locked-out or
// deactivated accounts, and wrong passwords are indistinguishable: all
// return false, so callers cannot enumerate usernames through differential
// responses. No counters are touched.
func (p *Provider) ValidateUser(ctx context.Context, username, password string) bool {
	login, err := p.repo.Logins().GetByUsername(ctx, username)
	if err != nil {
		p.emitEvent(ctx, ActivityEventValidationFailure, username, "", map[string]any{
			"reason": "unknown user",
		})
		return false
	}

	if login.IsLockedOut || !login.IsActivated {
		p.emitEvent(ctx, ActivityEventValidationFailure, username, login.ID.String(), map[string]any{
			"reason": "account blocked",
		})
		return false
	}

	if !p.hasher.VerifyDerivedKey(password, login.PasswordSalt, login.PasswordIterations, login.PasswordHash) {
		p.emitEvent(ctx, ActivityEventValidationFailure, username, login.ID.String(), map[string]any{
			"reason": "credential mismatch",
		})
		return false
	}

	p.emitEvent(ctx, ActivityEventValidationSuccess, username, login.ID.String(), nil)
	return true
}

// UnlockUser clears the lockout flag so the login can validate again.
// Returns false when the username matches no active login.
func (p *Provider) UnlockUser(ctx context.Context, username string) (bool, error) {
	found := false
	wasLocked := false
	var id string

	err := p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		login, err := p.repo.Logins().GetByUsernameTx(ctx, tx, username)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		found = true
		wasLocked = login.IsLockedOut
		id = login.ID.String()

		if !wasLocked {
			return nil
		}

		if err := validateTransition(login, StateActive); err != nil {
			return err
		}

		return p.repo.Logins().ClearLockoutTx(ctx, tx, login)
	})

	if err != nil {
		return false, WrapStorageError(err, "failed to unlock login")
	}

	if found && wasLocked {
		p.emitEvent(ctx, ActivityEventLockoutCleared, username, id, nil)
	}

	return found, nil
}

// DeleteUser removes a login. With deleteAllRelatedData the record and all
// associated data are purged for good; otherwise the record is soft-deleted:
// hidden from active lookups but retrievable through the deleted-record
// view. Returns false when the username matches no active login.
func (p *Provider) DeleteUser(ctx context.Context, username string, deleteAllRelatedData bool) (bool, error) {
	found := false
	var id string

	err := p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		login, err := p.repo.Logins().GetByUsernameTx(ctx, tx, username)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		found = true
		id = login.ID.String()

		if deleteAllRelatedData {
			if err := validateTransition(login, StatePurged); err != nil {
				return err
			}
			return p.repo.Logins().HardDeleteTx(ctx, tx, login)
		}

		if err := validateTransition(login, StateSoftDeleted); err != nil {
			return err
		}
		return p.repo.Logins().SoftDeleteTx(ctx, tx, login)
	})

	if err != nil {
		return false, WrapStorageError(err, "failed to delete login")
	}

	if found {
		event := ActivityEventLoginSoftDeleted
		if deleteAllRelatedData {
			event = ActivityEventLoginPurged
		}
		p.emitEvent(ctx, event, username, id, nil)
	}

	return found, nil
}

func (p *Provider) emitEvent(ctx context.Context, eventType ActivityEventType, username, loginID string, metadata map[string]any) {
	sink := normalizeActivitySink(p.activitySink)
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
		p.logger.Warn("activity sink record error: %v", err)
	}
}
