package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx handed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TxConfig struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

type gormTransactor struct {
	db     *gorm.DB
	config TxConfig
	logger logrus.FieldLogger
}

func NewTransactor(db *gorm.DB, config TxConfig, logger logrus.FieldLogger) Transactor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &gormTransactor{db: db, config: config, logger: logger}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	attempts := t.config.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = t.runOnce(ctx, fn)
		if !IsLockContention(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		wait := t.backoff(attempt)
		t.logger.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
		}).Warn("transaction lock contention, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrTxTimeout, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %w", ErrTxTimeout, attempts, err)
}

func (t *gormTransactor) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx := ctx
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	err := t.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if t.config.Timeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", t.config.Timeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(context.WithValue(txCtx, txKey{}, tx))
	})
	if err == nil {
		return nil
	}
	if errors.Is(txCtx.Err(), context.DeadlineExceeded) && isCanceled(err) {
		return fmt.Errorf("%w: %w", ErrTxTimeout, err)
	}
	return err
}

func (t *gormTransactor) backoff(attempt int) time.Duration {
	base := t.config.Backoff
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	return base * time.Duration(1<<(attempt-1))
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
