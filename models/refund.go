package models

import (
	"time"
)

type Refund struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"-"`
	ChargeID    string     `gorm:"size:64;not null;index" json:"charge_id"`
	Amount      Amount     `gorm:"not null" json:"amount"`
	Status      string     `gorm:"size:20;default:'pending'" json:"status"` // pending, succeeded, failed
	Description string     `gorm:"size:255" json:"description"`
}

// TableName overrides the table name
func (Refund) TableName() string {
	return "transaction_refunds"
}
