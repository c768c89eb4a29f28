// Package store is the persistence layer for charges, transfers and apps.
//
// Soft-deleted rows are never loaded or written: every query applies the
// notDeleted scope explicitly instead of relying on gorm's global scoping.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/gpay-transactions/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrRefundExceedsAmount = errors.New("refund exceeds refundable amount")
)

// PersistenceError is returned when a write did not apply.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Fields is a set of column values applied in a single UPDATE.
type Fields map[string]interface{}

type ChargeStore interface {
	LoadCharge(ctx context.Context, id string) (*models.Charge, error)
	CreateCharge(ctx context.Context, charge *models.Charge) error
	UpdateCharge(ctx context.Context, id string, fields Fields) error
	// MarkChargePaid sets the paid columns only if the charge is not paid yet.
	// applied reports whether this call performed the transition.
	MarkChargePaid(ctx context.Context, id, transactionNo string, at time.Time) (applied bool, err error)
	AddRefund(ctx context.Context, refund *models.Refund) (*models.Charge, error)
	SoftDeleteCharge(ctx context.Context, id string) error
}

type TransferStore interface {
	LoadTransfer(ctx context.Context, id string) (*models.Transfer, error)
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	UpdateTransfer(ctx context.Context, id string, fields Fields) error
}

type AppStore interface {
	LoadApp(ctx context.Context, id string) (*models.App, error)
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}
