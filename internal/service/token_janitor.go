package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// TokenJanitor periodically removes expired blacklist entries.
type TokenJanitor struct {
	purger   TokenPurger
	interval time.Duration
	logger   logrus.FieldLogger
}

func NewTokenJanitor(purger TokenPurger, interval time.Duration, logger logrus.FieldLogger) *TokenJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TokenJanitor{purger: purger, interval: interval, logger: logger}
}

// Run blocks until ctx is done.
func (j *TokenJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *TokenJanitor) sweep(ctx context.Context) {
	removed, err := j.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.WithError(err).Error("failed to purge expired tokens")
		}
		return
	}
	if removed > 0 {
		j.logger.WithField("removed", removed).Info("purged expired tokens")
	}
}
