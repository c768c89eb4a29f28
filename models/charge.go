package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrAmountRefundedOutOfRange = errors.New("amount_refunded must be between 0 and amount")

// Charge is one payment attempt through a gateway channel.
type Charge struct {
	ID             string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      *time.Time     `gorm:"index" json:"-"`
	AppID          string         `gorm:"size:64;not null;index" json:"app_id"`
	App            *App           `gorm:"foreignKey:AppID" json:"-"`
	Paid           bool           `gorm:"not null;default:false" json:"paid"`
	Refunded       bool           `gorm:"not null;default:false" json:"refunded"`
	Reversed       bool           `gorm:"not null;default:false" json:"reversed"`
	Type           string         `gorm:"size:32" json:"type"`
	Channel        string         `gorm:"size:32;not null" json:"channel"`
	OrderID        string         `gorm:"size:64;not null;index" json:"order_id"`
	Amount         Amount         `gorm:"not null" json:"amount"`
	Currency       string         `gorm:"size:10;not null" json:"currency"`
	Subject        string         `gorm:"size:255" json:"subject"`
	Body           string         `gorm:"size:255" json:"body"`
	ClientIP       string         `gorm:"size:45" json:"client_ip"`
	Extra          datatypes.JSON `json:"extra"`
	TimePaid       *time.Time     `json:"time_paid"`
	TimeExpire     *time.Time     `json:"time_expire"`
	TransactionNo  *string        `gorm:"size:64" json:"transaction_no"`
	AmountRefunded Amount         `gorm:"not null;default:0" json:"amount_refunded"`
	FailureCode    string         `gorm:"size:64" json:"failure_code"`
	FailureMsg     string         `gorm:"size:255" json:"failure_msg"`
	Metadata       datatypes.JSON `json:"metadata"`
	Credential     datatypes.JSON `json:"credential"`
	Description    string         `gorm:"type:text" json:"description"`
	Refunds        []Refund       `gorm:"foreignKey:ChargeID" json:"-"`
}

// TableName overrides the table name
func (Charge) TableName() string {
	return "transaction_charges"
}

// Refundable is the part of the amount that has not been refunded yet.
func (c *Charge) Refundable() Amount {
	return c.Amount.Sub(c.AmountRefunded)
}

// ValidateAmounts checks 0 <= amount_refunded <= amount.
func (c *Charge) ValidateAmounts() error {
	if c.Amount.IsNegative() || c.AmountRefunded.IsNegative() || c.AmountRefunded > c.Amount {
		return ErrAmountRefundedOutOfRange
	}
	return nil
}

// Snapshot returns the charge's current field values as a plain map, the
// same shape it has on the wire.
func (c *Charge) Snapshot() (map[string]interface{}, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	snapshot := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
