package membership

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Logins is the persistence contract consumed by the providers. Every
// operation has a Tx variant so callers can scope reads and writes to a
// single unit of work.
type Logins interface {
	repository.Repository[*Login]

	GetByUsername(ctx context.Context, username string) (*Login, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Login, error)
	GetByEmail(ctx context.Context, email string) (*Login, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Login, error)
	GetDeleted(ctx context.Context, id uuid.UUID) (*Login, error)
	GetDeletedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Login, error)
	ListActive(ctx context.Context) ([]*Login, error)
	ListActiveTx(ctx context.Context, tx bun.IDB) ([]*Login, error)

	Create(ctx context.Context, record *Login, criteria ...repository.InsertCriteria) (*Login, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Login, criteria ...repository.InsertCriteria) (*Login, error)

	TrackActivity(ctx context.Context, login *Login) error
	TrackActivityTx(ctx context.Context, tx bun.IDB, login *Login) error
	ClearLockout(ctx context.Context, login *Login) error
	ClearLockoutTx(ctx context.Context, tx bun.IDB, login *Login) error
	UpdateRoles(ctx context.Context, login *Login) error
	UpdateRolesTx(ctx context.Context, tx bun.IDB, login *Login) error

	SoftDelete(ctx context.Context, login *Login) error
	SoftDeleteTx(ctx context.Context, tx bun.IDB, login *Login) error
	HardDelete(ctx context.Context, login *Login) error
	HardDeleteTx(ctx context.Context, tx bun.IDB, login *Login) error
}

type logins struct {
	repository.Repository[*Login]
	db *bun.DB
}

var (
	_ Logins                        = (*logins)(nil)
	_ repository.Repository[*Login] = (*logins)(nil)
)

func NewLoginsRepository(db *bun.DB) Logins {
	repo := repository.NewRepository[*Login](db, repository.ModelHandlers[*Login]{
		NewRecord: func() *Login { return &Login{} },
		GetID: func(l *Login) uuid.UUID {
			if l == nil {
				return uuid.Nil
			}
			return l.ID
		},
		SetID: func(l *Login, id uuid.UUID) {
			if l != nil {
				l.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &logins{
		Repository: repo,
		db:         db,
	}
}

func (a *logins) GetByUsername(ctx context.Context, username string) (*Login, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *logins) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Login, error) {
	return a.getByColumnTx(ctx, tx, "username", username)
}

func (a *logins) GetByEmail(ctx context.Context, email string) (*Login, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *logins) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Login, error) {
	return a.getByColumnTx(ctx, tx, "email", email)
}

func (a *logins) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*Login, error) {
	record := &Login{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

// GetDeleted is the deleted-record view: it retrieves a soft-deleted login by
// the same identifier it carried while active, bypassing the filter that
// hides it from normal lookups.
func (a *logins) GetDeleted(ctx context.Context, id uuid.UUID) (*Login, error) {
	return a.GetDeletedTx(ctx, a.db, id)
}

func (a *logins) GetDeletedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Login, error) {
	record := &Login{}
	err := tx.NewSelect().
		Model(record).
		WhereDeleted().
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *logins) ListActive(ctx context.Context) ([]*Login, error) {
	return a.ListActiveTx(ctx, a.db)
}

func (a *logins) ListActiveTx(ctx context.Context, tx bun.IDB) ([]*Login, error) {
	var records []*Login
	// the soft-delete filter applies, deleted records stay hidden
	err := tx.NewSelect().
		Model(&records).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *logins) Create(ctx context.Context, record *Login, criteria ...repository.InsertCriteria) (*Login, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *logins) CreateTx(ctx context.Context, tx bun.IDB, record *Login, criteria ...repository.InsertCriteria) (*Login, error) {
	prepareLoginDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *logins) TrackActivity(ctx context.Context, login *Login) error {
	return a.TrackActivityTx(ctx, a.db, login)
}

func (a *logins) TrackActivityTx(ctx context.Context, tx bun.IDB, login *Login) error {
	now := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "logins" AS "lgn"
		SET
			"last_active" = ?
		WHERE
			("lgn".id = ?)
			AND "lgn"."deleted_at" IS NULL;
	`, now, login.ID).Exec(ctx)

	if err == nil {
		login.LastActive = &now
	}

	return err
}

func (a *logins) ClearLockout(ctx context.Context, login *Login) error {
	return a.ClearLockoutTx(ctx, a.db, login)
}

func (a *logins) ClearLockoutTx(ctx context.Context, tx bun.IDB, login *Login) error {
	// NOTE: Updating through the ORM fails for this case, a partial update
	// skips zero values so it wont reset is_locked_out, login_attempts.
	_, err := tx.NewRaw(`
		UPDATE "logins" AS "lgn"
		SET
			"is_locked_out" = FALSE,
			"login_attempts" = 0
		WHERE
			("lgn".id = ?)
			AND "lgn"."deleted_at" IS NULL;
	`, login.ID).Exec(ctx)

	if err == nil {
		login.IsLockedOut = false
		login.LoginAttempts = 0
	}

	return err
}

func (a *logins) UpdateRoles(ctx context.Context, login *Login) error {
	return a.UpdateRolesTx(ctx, a.db, login)
}

func (a *logins) UpdateRolesTx(ctx context.Context, tx bun.IDB, login *Login) error {
	_, err := tx.NewUpdate().
		Model(login).
		Column("roles").
		WherePK().
		Exec(ctx)
	return err
}

func (a *logins) SoftDelete(ctx context.Context, login *Login) error {
	return a.SoftDeleteTx(ctx, a.db, login)
}

func (a *logins) SoftDeleteTx(ctx context.Context, tx bun.IDB, login *Login) error {
	login.Status = LoginStatusDeleted
	if _, err := tx.NewUpdate().
		Model(login).
		Column("status").
		WherePK().
		Exec(ctx); err != nil {
		return err
	}

	// the soft_delete tag turns this into an UPDATE of deleted_at
	_, err := tx.NewDelete().
		Model(login).
		WherePK().
		Exec(ctx)

	if err == nil && login.DeletedAt == nil {
		now := time.Now()
		login.DeletedAt = &now
	}

	return err
}

func (a *logins) HardDelete(ctx context.Context, login *Login) error {
	return a.HardDeleteTx(ctx, a.db, login)
}

func (a *logins) HardDeleteTx(ctx context.Context, tx bun.IDB, login *Login) error {
	_, err := tx.NewDelete().
		Model(login).
		WherePK().
		ForceDelete().
		Exec(ctx)
	return err
}

func prepareLoginDefaults(record *Login) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
