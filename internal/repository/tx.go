package repository

import (
	"context"
	"errors"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

// Transactor runs fn inside one database transaction. fn may run more than
// once, so it must not have effects outside tx.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type transactorImpl struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
}

func NewTransactor(db *gorm.DB, maxAttempts int) Transactor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &transactorImpl{
		db:          db,
		maxAttempts: maxAttempts,
		backoff:     20 * time.Millisecond,
	}
}

func (t *transactorImpl) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	for attempt := 1; ; attempt++ {
		err := t.db.WithContext(ctx).Transaction(fn)
		if err == nil || attempt >= t.maxAttempts || !IsRetryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.backoff * time.Duration(attempt)):
		}
	}
}

// IsRetryable reports lock contention the caller can resolve by running
// the whole transaction again.
func IsRetryable(err error) bool {
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}
