package services

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/gpay-transactions/models"
	"github.com/yourusername/gpay-transactions/store"
)

// memChargeStore keeps charges in memory. MarkChargePaid is a compare-and-swap
// on the paid flag, like the conditional UPDATE of the gorm store.
type memChargeStore struct {
	mu        sync.Mutex
	charges   map[string]models.Charge
	updateErr error
	paidErr   error
}

func newMemChargeStore(charges ...models.Charge) *memChargeStore {
	s := &memChargeStore{charges: map[string]models.Charge{}}
	for _, c := range charges {
		s.charges[c.ID] = c
	}
	return s
}

func (s *memChargeStore) LoadCharge(ctx context.Context, id string) (*models.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok || c.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *memChargeStore) CreateCharge(ctx context.Context, charge *models.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges[charge.ID] = *charge
	return nil
}

func (s *memChargeStore) UpdateCharge(ctx context.Context, id string, fields store.Fields) error {
	if s.updateErr != nil {
		return &store.PersistenceError{Op: "update charge", ID: id, Err: s.updateErr}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok || c.DeletedAt != nil {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "reversed":
			c.Reversed = v.(bool)
		case "credential":
			c.Credential = nil
		case "failure_code":
			c.FailureCode = v.(string)
		case "failure_msg":
			c.FailureMsg = v.(string)
		}
	}
	s.charges[id] = c
	return nil
}

func (s *memChargeStore) MarkChargePaid(ctx context.Context, id, transactionNo string, at time.Time) (bool, error) {
	if s.paidErr != nil {
		return false, &store.PersistenceError{Op: "mark charge paid", ID: id, Err: s.paidErr}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok || c.DeletedAt != nil {
		return false, store.ErrNotFound
	}
	if c.Paid {
		return false, nil
	}
	c.Paid = true
	c.TransactionNo = &transactionNo
	c.TimePaid = &at
	s.charges[id] = c
	return true, nil
}

func (s *memChargeStore) AddRefund(ctx context.Context, refund *models.Refund) (*models.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[refund.ChargeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if refund.Amount <= 0 || refund.Amount > c.Refundable() {
		return nil, store.ErrRefundExceedsAmount
	}
	c.AmountRefunded = c.AmountRefunded.Add(refund.Amount)
	c.Refunded = c.AmountRefunded == c.Amount
	s.charges[c.ID] = c
	return &c, nil
}

func (s *memChargeStore) SoftDeleteCharge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	s.charges[id] = c
	return nil
}

// reloadFailingStore fails every LoadCharge that follows a successful
// MarkChargePaid, once.
type reloadFailingStore struct {
	*memChargeStore
	loadErr  error
	armed    bool
	failures int
}

func (s *reloadFailingStore) MarkChargePaid(ctx context.Context, id, transactionNo string, at time.Time) (bool, error) {
	applied, err := s.memChargeStore.MarkChargePaid(ctx, id, transactionNo, at)
	if applied && s.failures == 0 {
		s.armed = true
	}
	return applied, err
}

func (s *reloadFailingStore) LoadCharge(ctx context.Context, id string) (*models.Charge, error) {
	if s.armed {
		s.armed = false
		s.failures++
		return nil, s.loadErr
	}
	return s.memChargeStore.LoadCharge(ctx, id)
}

type memAppStore map[string]models.App

func (s memAppStore) LoadApp(ctx context.Context, id string) (*models.App, error) {
	app, ok := s[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &app, nil
}

type notification struct {
	Endpoint string
	Payload  map[string]interface{}
}

type countingNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (n *countingNotifier) Enqueue(ctx context.Context, endpoint string, payload map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{Endpoint: endpoint, Payload: payload})
	return n.err
}

func (n *countingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type memTransferStore struct {
	mu        sync.Mutex
	transfers map[string]models.Transfer
	updateErr error
}

func (s *memTransferStore) LoadTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *memTransferStore) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[transfer.ID] = *transfer
	return nil
}

func (s *memTransferStore) UpdateTransfer(ctx context.Context, id string, fields store.Fields) error {
	if s.updateErr != nil {
		return &store.PersistenceError{Op: "update transfer", ID: id, Err: s.updateErr}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			t.Status = v.(models.TransferStatus)
		case "failure_code":
			t.FailureCode = v.(string)
		case "failure_msg":
			t.FailureMsg = v.(string)
		}
	}
	s.transfers[id] = t
	return nil
}
