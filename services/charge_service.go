package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gpay-transactions/channels"
	"github.com/yourusername/gpay-transactions/models"
	"github.com/yourusername/gpay-transactions/queue"
	"github.com/yourusername/gpay-transactions/store"
)

// ChannelResolver resolves a channel name to its gateway.
type ChannelResolver interface {
	Resolve(name string) (channels.Gateway, error)
}

// ChargeService implements the charge lifecycle: paid, reversed and failed
// transitions, refunds, and the paid notification.
type ChargeService struct {
	Charges  store.ChargeStore
	Apps     store.AppStore
	Notifier queue.Notifier
	Channels ChannelResolver
	Now      func() time.Time
}

func NewChargeService(charges store.ChargeStore, apps store.AppStore, notifier queue.Notifier, resolver ChannelResolver) *ChargeService {
	return &ChargeService{
		Charges:  charges,
		Apps:     apps,
		Notifier: notifier,
		Channels: resolver,
		Now:      time.Now,
	}
}

// PaidResult is the outcome of MarkPaid. NotifyErr is set when the charge
// was marked paid but the notification could not be enqueued; the payment
// stays confirmed either way.
type PaidResult struct {
	Charge    *models.Charge
	Notified  bool
	NotifyErr error
}

func (s *ChargeService) Get(ctx context.Context, id string) (*models.Charge, error) {
	return s.Charges.LoadCharge(ctx, id)
}

func (s *ChargeService) Create(ctx context.Context, charge *models.Charge) error {
	if _, err := s.Channels.Resolve(charge.Channel); err != nil {
		return err
	}
	charge.Paid = false
	charge.Refunded = false
	charge.Reversed = false
	charge.AmountRefunded = 0
	return s.Charges.CreateCharge(ctx, charge)
}

// MarkReversed flags the charge reversed and clears its credential.
func (s *ChargeService) MarkReversed(ctx context.Context, id string) (*models.Charge, error) {
	if err := s.Charges.UpdateCharge(ctx, id, store.Fields{"reversed": true, "credential": nil}); err != nil {
		return nil, err
	}
	return s.Charges.LoadCharge(ctx, id)
}

// RecordFailure stores the gateway failure on the charge. Paid and reversed
// are left alone.
func (s *ChargeService) RecordFailure(ctx context.Context, id, code, msg string) (*models.Charge, error) {
	if err := s.Charges.UpdateCharge(ctx, id, store.Fields{"failure_code": code, "failure_msg": msg}); err != nil {
		return nil, err
	}
	return s.Charges.LoadCharge(ctx, id)
}

// MarkPaid confirms the payment with the gateway's transaction number.
//
// It is safe to call repeatedly: only the call whose conditional update
// flips paid from false to true sets the transaction number and enqueues the
// app notification. Every other call returns the stored charge unchanged.
func (s *ChargeService) MarkPaid(ctx context.Context, id, transactionNo string) (*PaidResult, error) {
	charge, err := s.Charges.LoadCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	if charge.Paid {
		return &PaidResult{Charge: charge}, nil
	}

	paidAt := s.Now()
	applied, err := s.Charges.MarkChargePaid(ctx, id, transactionNo, paidAt)
	if err != nil {
		return nil, err
	}

	updated, err := s.Charges.LoadCharge(ctx, id)
	if err != nil {
		if !applied {
			return nil, err
		}
		// The paid state is committed; the notification still has to go out.
		log.Printf("charge %s paid but reload failed, notifying from loaded copy: %v", id, err)
		charge.Paid = true
		charge.TransactionNo = &transactionNo
		charge.TimePaid = &paidAt
		updated = charge
	}
	charge = updated
	result := &PaidResult{Charge: charge}
	if !applied {
		return result, nil
	}

	result.Notified, result.NotifyErr = s.notifyPaid(ctx, charge)
	if result.NotifyErr != nil {
		log.Printf("charge %s paid but notification not enqueued: %v", charge.ID, result.NotifyErr)
	}
	return result, nil
}

func (s *ChargeService) notifyPaid(ctx context.Context, charge *models.Charge) (bool, error) {
	app, err := s.Apps.LoadApp(ctx, charge.AppID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load app %s: %w", charge.AppID, err)
	}
	if app.NotifyURL == "" {
		return false, nil
	}

	payload, err := charge.Snapshot()
	if err != nil {
		return false, &queue.QueueError{Endpoint: app.NotifyURL, Err: err}
	}

	log.Printf("enqueue paid notification for charge %s", charge.ID)
	if err := s.Notifier.Enqueue(ctx, app.NotifyURL, payload); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ChargeService) Refundable(ctx context.Context, id string) (models.Amount, error) {
	charge, err := s.Charges.LoadCharge(ctx, id)
	if err != nil {
		return 0, err
	}
	return charge.Refundable(), nil
}

// Refund records a refund of amount against a paid charge.
func (s *ChargeService) Refund(ctx context.Context, id string, amount models.Amount, description string) (*models.Refund, *models.Charge, error) {
	charge, err := s.Charges.LoadCharge(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !charge.Paid {
		return nil, nil, ErrChargeNotPaid
	}

	refund := &models.Refund{
		ID:          "re_" + uuid.NewString(),
		ChargeID:    id,
		Amount:      amount,
		Status:      "pending",
		Description: description,
	}
	charge, err = s.Charges.AddRefund(ctx, refund)
	if err != nil {
		return nil, nil, err
	}
	return refund, charge, nil
}

// Channel resolves the gateway that handles the charge.
func (s *ChargeService) Channel(ctx context.Context, id string) (channels.Gateway, error) {
	charge, err := s.Charges.LoadCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Channels.Resolve(charge.Channel)
}
