package store

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/gpay-transactions/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm implements ChargeStore, TransferStore and AppStore on a gorm database.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) LoadCharge(ctx context.Context, id string) (*models.Charge, error) {
	var charge models.Charge
	if err := s.first(ctx, &charge, id); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (s *Gorm) CreateCharge(ctx context.Context, charge *models.Charge) error {
	if err := charge.ValidateAmounts(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(charge).Error; err != nil {
		return &PersistenceError{Op: "create charge", ID: charge.ID, Err: err}
	}
	return nil
}

func (s *Gorm) UpdateCharge(ctx context.Context, id string, fields Fields) error {
	return s.update(ctx, &models.Charge{}, "update charge", id, fields)
}

func (s *Gorm) MarkChargePaid(ctx context.Context, id, transactionNo string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Charge{}).
		Scopes(notDeleted).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]interface{}{
			"transaction_no": transactionNo,
			"time_paid":      at,
			"paid":           true,
		})
	if result.Error != nil {
		return false, &PersistenceError{Op: "mark charge paid", ID: id, Err: result.Error}
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// Nothing matched: either somebody else won the race or the charge is gone.
	if _, err := s.LoadCharge(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// AddRefund records a refund and raises amount_refunded by its amount, keeping
// amount_refunded <= amount. The charge row is locked for the duration.
func (s *Gorm) AddRefund(ctx context.Context, refund *models.Refund) (*models.Charge, error) {
	var charge models.Charge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(notDeleted).
			Where("id = ?", refund.ChargeID).
			First(&charge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return &PersistenceError{Op: "lock charge", ID: refund.ChargeID, Err: err}
		}

		if refund.Amount <= 0 || refund.Amount > charge.Refundable() {
			return ErrRefundExceedsAmount
		}

		refunded := charge.AmountRefunded.Add(refund.Amount)
		result := tx.Model(&models.Charge{}).
			Where("id = ? AND amount_refunded = ?", charge.ID, charge.AmountRefunded).
			Updates(map[string]interface{}{
				"amount_refunded": refunded,
				"refunded":        refunded == charge.Amount,
			})
		if result.Error != nil {
			return &PersistenceError{Op: "add refund", ID: charge.ID, Err: result.Error}
		}
		if result.RowsAffected != 1 {
			return &PersistenceError{Op: "add refund", ID: charge.ID, Err: errors.New("concurrent refund update")}
		}

		if err := tx.Create(refund).Error; err != nil {
			return &PersistenceError{Op: "create refund", ID: refund.ID, Err: err}
		}

		charge.AmountRefunded = refunded
		charge.Refunded = refunded == charge.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (s *Gorm) SoftDeleteCharge(ctx context.Context, id string) error {
	return s.update(ctx, &models.Charge{}, "delete charge", id, Fields{"deleted_at": time.Now()})
}

func (s *Gorm) LoadTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := s.first(ctx, &transfer, id); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *Gorm) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if transfer.Status == "" {
		transfer.Status = models.TransferScheduled
	}
	if err := s.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return &PersistenceError{Op: "create transfer", ID: transfer.ID, Err: err}
	}
	return nil
}

func (s *Gorm) UpdateTransfer(ctx context.Context, id string, fields Fields) error {
	return s.update(ctx, &models.Transfer{}, "update transfer", id, fields)
}

func (s *Gorm) LoadApp(ctx context.Context, id string) (*models.App, error) {
	var app models.App
	if err := s.first(ctx, &app, id); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Gorm) first(ctx context.Context, dest interface{}, id string) error {
	err := s.db.WithContext(ctx).Scopes(notDeleted).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Gorm) update(ctx context.Context, model interface{}, op, id string, fields Fields) error {
	result := s.db.WithContext(ctx).
		Model(model).
		Scopes(notDeleted).
		Where("id = ?", id).
		Updates(map[string]interface{}(fields))
	if result.Error != nil {
		return &PersistenceError{Op: op, ID: id, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
