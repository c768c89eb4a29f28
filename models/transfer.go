package models

import (
	"time"

	"gorm.io/datatypes"
)

type TransferStatus string

const (
	TransferScheduled TransferStatus = "scheduled"
	TransferPending   TransferStatus = "pending"
	TransferPaid      TransferStatus = "paid"
	TransferFailed    TransferStatus = "failed"
)

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferScheduled, TransferPending, TransferPaid, TransferFailed:
		return true
	}
	return false
}

// Transfer is one outbound payout.
type Transfer struct {
	ID            string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     *time.Time     `gorm:"index" json:"-"`
	AppID         string         `gorm:"size:64;not null;index" json:"app_id"`
	Channel       string         `gorm:"size:32;not null" json:"channel"`
	Status        TransferStatus `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	OrderID       string         `gorm:"size:64;not null;index" json:"order_id"`
	Amount        Amount         `gorm:"not null" json:"amount"`
	Currency      string         `gorm:"size:10;not null" json:"currency"`
	RecipientID   string         `gorm:"size:64;not null" json:"recipient_id"`
	Description   string         `gorm:"size:255" json:"description"`
	TransactionNo *string        `gorm:"size:64" json:"transaction_no"`
	FailureCode   string         `gorm:"size:64" json:"failure_code"`
	FailureMsg    string         `gorm:"size:255" json:"failure_msg"`
	Metadata      datatypes.JSON `json:"metadata"`
	Extra         datatypes.JSON `json:"extra"`
	TransferredAt *time.Time     `json:"transferred_at"`
}

// TableName overrides the table name
func (Transfer) TableName() string {
	return "transaction_transfer"
}
