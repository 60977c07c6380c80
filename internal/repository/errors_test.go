package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsLockContention(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg serialization", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"}), true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain", errors.New("nope"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsLockContention(tc.err))
		})
	}
}

func TestWriteErrorClassifiesConstraints(t *testing.T) {
	assert.NoError(t, writeError(nil))
	assert.ErrorIs(t, writeError(gorm.ErrDuplicatedKey), ErrDuplicateKey)
	assert.ErrorIs(t, writeError(&pgconn.PgError{Code: "23505"}), ErrDuplicateKey)
	assert.ErrorIs(t, writeError(gorm.ErrForeignKeyViolated), ErrReferenced)
	assert.ErrorIs(t, writeError(&pgconn.PgError{Code: "23503"}), ErrReferenced)

	plain := errors.New("plain")
	assert.Equal(t, plain, writeError(plain))
}
