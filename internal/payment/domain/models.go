// Package domain contains persistence models for received payments.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Method is how a payment was received.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodPaystack     Method = "paystack"
	MethodCredit       Method = "credit"
)

// ValidMethod reports whether the value is a known method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodPaystack, MethodCredit:
		return true
	}
	return false
}

// ValidCreditTerms reports whether days is an offered credit term.
func ValidCreditTerms(days int) bool {
	switch days {
	case 7, 14, 30, 60:
		return true
	}
	return false
}

// Status is the settlement state of a payment.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Payment represents money received from a client. The invoice link is
// weak; deleting an invoice leaves its payments in place.
type Payment struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID  `gorm:"column:user_id;not null;index" json:"-"`
	InvoiceID  *snowflake.ID `gorm:"column:invoice_id;index" json:"invoice_id,omitempty"`
	ClientName string        `gorm:"column:client_name;type:text;not null" json:"client_name"`
	Amount     float64       `gorm:"not null" json:"amount"`
	Method     Method        `gorm:"type:text;not null" json:"method"`
	Status     Status        `gorm:"type:text;not null;default:'pending'" json:"status"`
	Reference  string        `gorm:"type:text;index" json:"reference,omitempty"`
	// CreditTerms is the agreed settlement window in days, set only
	// for credit-method payments.
	CreditTerms int               `gorm:"column:credit_terms;not null;default:0" json:"credit_terms,omitempty"`
	Date        time.Time         `gorm:"not null;index" json:"date"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Validate checks invariants before persisting.
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.ClientName) == "" {
		return ErrInvalidClient
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidMethod(p.Method) {
		return ErrInvalidMethod
	}
	if p.Method == MethodCredit && !ValidCreditTerms(p.CreditTerms) {
		return ErrInvalidCreditTerms
	}
	if p.Method != MethodCredit && p.CreditTerms != 0 {
		return ErrInvalidCreditTerms
	}
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
