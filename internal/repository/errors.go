package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrReferenced   = errors.New("row is still referenced")
	ErrTxTimeout    = errors.New("transaction timed out")
)

const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
	pgQueryCanceled        = "57014"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// IsLockContention reports whether err is a lock wait or serialization
// failure that is safe to retry after the transaction rolled back.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
			return true
		}
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
		// Deferred and RESTRICT checks report SQLITE_CONSTRAINT_TRIGGER.
		return liteErr.Code == sqlite3.ErrConstraint && strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}
	return false
}

func isCanceled(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgQueryCanceled
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrInterrupt
	}
	return false
}

// writeError folds constraint violations into the package sentinels so the
// service layer does not need to know which driver produced them.
func writeError(err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicateKey(err):
		return errors.Join(ErrDuplicateKey, err)
	case isForeignKeyViolation(err):
		return errors.Join(ErrReferenced, err)
	}
	return err
}
