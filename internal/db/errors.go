package db

import (
	"context"
	"errors"
	"krishna_store/internal/domain"

	"github.com/go-sql-driver/mysql" // MySQL error numbers
	"gorm.io/gorm"
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// BusyMessage is shown when the store rejects work because of contention
const BusyMessage = "Database is busy. Please try again in a moment."

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// IsBusy reports whether err is lock contention or a timeout
func IsBusy(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlLockWaitTimeout || mysqlErr.Number == mysqlDeadlock
	}
	return false
}

// Classify turns a raw store error into an AppError. Errors that already
// carry a kind pass through untouched.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case IsDuplicate(err):
		return domain.ConflictError("Record already exists", errors.Join(domain.ErrDuplicate, err))
	case IsBusy(err):
		return domain.InfrastructureError(BusyMessage, errors.Join(domain.ErrStoreBusy, err))
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError("Record not found", err)
	default:
		return domain.NewError(domain.KindUnknown, message, err)
	}
}
