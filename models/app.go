package models

import (
	"strings"
	"time"
)

// App is a registered client application. Charges and transfers belong to
// the app that created them, and paid charges are reported to its NotifyURL.
type App struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `gorm:"index" json:"-"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	NotifyURL  string     `gorm:"size:500" json:"notify_url"`
	SecretHash string     `gorm:"size:255;not null" json:"-"`
	Scopes     string     `gorm:"size:255;default:'charges'" json:"scopes"` // comma separated: charges, transfers
	IsActive   bool       `gorm:"default:true" json:"is_active"`
}

// TableName overrides the table name
func (App) TableName() string {
	return "apps"
}

// ScopeList splits Scopes into its entries.
func (a *App) ScopeList() []string {
	var scopes []string
	for _, scope := range strings.Split(a.Scopes, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}
