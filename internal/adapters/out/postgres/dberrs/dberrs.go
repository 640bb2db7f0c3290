// Package dberrs maps postgres failures onto the engine's error taxonomy.
// Failures caused by a concurrent writer become errs.BatchConflictError so
// callers can retry the whole action; everything else passes through.
package dberrs

import (
	"errors"
	"fmt"

	"parcelhub/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	uniqueViolation  pq.ErrorCode  = "23505"
	transactionClass pq.ErrorClass = "40"
)

// sqlStater is implemented by both pgconn.PgError and pq.Error.
type sqlStater interface {
	SQLState() string
}

// Translate wraps err as a batch conflict when the store rejected the write
// because of another transaction.
func Translate(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrBatchConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewBatchConflictError(operation, err)
	}

	var state sqlStater
	if !errors.As(err, &state) {
		return err
	}
	code := pq.ErrorCode(state.SQLState())
	if code == uniqueViolation || code.Class() == transactionClass {
		return errs.NewBatchConflictError(operation, fmt.Errorf("%s: %w", code.Name(), err))
	}
	return err
}
