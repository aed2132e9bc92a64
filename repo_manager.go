package membership

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus the transaction scope every
// public operation runs in
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Logins() Logins
}

type mngr struct {
	db     *bun.DB
	logins Logins
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:     db,
		logins: NewLoginsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.logins == nil {
		return errors.New("repository logins should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Logins() Logins {
	return m.logins
}
