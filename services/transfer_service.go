package services

import (
	"context"

	"github.com/yourusername/gpay-transactions/channels"
	"github.com/yourusername/gpay-transactions/models"
	"github.com/yourusername/gpay-transactions/store"
)

type TransferService struct {
	Transfers store.TransferStore
	Channels  ChannelResolver
}

func NewTransferService(transfers store.TransferStore, resolver ChannelResolver) *TransferService {
	return &TransferService{Transfers: transfers, Channels: resolver}
}

func (s *TransferService) Get(ctx context.Context, id string) (*models.Transfer, error) {
	return s.Transfers.LoadTransfer(ctx, id)
}

// Create stores a new transfer in the scheduled state.
func (s *TransferService) Create(ctx context.Context, transfer *models.Transfer) error {
	if _, err := s.Channels.Resolve(transfer.Channel); err != nil {
		return err
	}
	transfer.Status = models.TransferScheduled
	transfer.FailureCode = ""
	transfer.FailureMsg = ""
	return s.Transfers.CreateTransfer(ctx, transfer)
}

// SetFailure moves the transfer to failed with the given code and message.
// A failed transfer always carries both.
func (s *TransferService) SetFailure(ctx context.Context, id, code, msg string) (*models.Transfer, error) {
	if code == "" || msg == "" {
		return nil, ErrFailureRequired
	}
	err := s.Transfers.UpdateTransfer(ctx, id, store.Fields{
		"status":       models.TransferFailed,
		"failure_code": code,
		"failure_msg":  msg,
	})
	if err != nil {
		return nil, err
	}
	return s.Transfers.LoadTransfer(ctx, id)
}

// PayoutEnvelope asks the transfer's channel for an unsigned payout paying
// the transfer from sourceAccount.
func (s *TransferService) PayoutEnvelope(ctx context.Context, id, sourceAccount string) (string, error) {
	transfer, err := s.Transfers.LoadTransfer(ctx, id)
	if err != nil {
		return "", err
	}
	gateway, err := s.Channels.Resolve(transfer.Channel)
	if err != nil {
		return "", err
	}
	payout, ok := gateway.(channels.PayoutGateway)
	if !ok {
		return "", ErrNotPayoutCapable
	}
	return payout.BuildPayout(transfer, sourceAccount)
}
