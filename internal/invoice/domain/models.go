// Package domain contains persistence models and invariants for invoicing.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents stored invoice lifecycle states. Overdue is
// never stored; it is derived from the due date at read time.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"

	// StatusOverdue is the derived display status for sent invoices
	// past their due date.
	StatusOverdue = "overdue"
)

// DefaultTaxRate is the VAT percentage applied to new invoices.
const DefaultTaxRate = 7.5

// LineItem is a single billable line on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice represents a bill issued to a client. Amounts are naira.
type Invoice struct {
	ID            snowflake.ID                   `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID                   `gorm:"column:user_id;not null;index;uniqueIndex:ux_invoice_number_user" json:"-"`
	InvoiceNumber string                         `gorm:"column:invoice_number;type:text;not null;uniqueIndex:ux_invoice_number_user" json:"invoice_number"`
	ClientID      *snowflake.ID                  `gorm:"column:client_id;index" json:"client_id,omitempty"`
	ClientName    string                         `gorm:"column:client_name;type:text;not null" json:"client_name"`
	ClientEmail   string                         `gorm:"column:client_email;type:text" json:"client_email,omitempty"`
	Status        InvoiceStatus                  `gorm:"type:text;not null;default:'draft'" json:"status"`
	IssueDate     time.Time                      `gorm:"column:issue_date;not null" json:"issue_date"`
	DueDate       time.Time                      `gorm:"column:due_date;not null" json:"due_date"`
	LineItems     datatypes.JSONSlice[LineItem]  `gorm:"column:line_items;not null" json:"line_items"`
	Subtotal      float64                        `gorm:"not null;default:0" json:"subtotal"`
	TaxRate       float64                        `gorm:"column:tax_rate;not null;default:7.5" json:"tax_rate"`
	TaxAmount     float64                        `gorm:"column:tax_amount;not null;default:0" json:"tax_amount"`
	Discount      float64                        `gorm:"not null;default:0" json:"discount"`
	Total         float64                        `gorm:"not null;default:0" json:"total"`
	AmountPaid    float64                        `gorm:"column:amount_paid;not null;default:0" json:"amount_paid"`
	Notes         string                         `gorm:"type:text" json:"notes,omitempty"`
	Metadata      datatypes.JSONMap              `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	SentAt        *time.Time                     `gorm:"column:sent_at" json:"sent_at,omitempty"`
	PaidAt        *time.Time                     `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// ComputeTotals recalculates the line amounts, subtotal, tax and total.
func (inv *Invoice) ComputeTotals() {
	var subtotal float64
	for i := range inv.LineItems {
		inv.LineItems[i].Amount = inv.LineItems[i].Quantity * inv.LineItems[i].UnitPrice
		subtotal += inv.LineItems[i].Amount
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal * inv.TaxRate / 100
	inv.Total = inv.Subtotal + inv.TaxAmount - inv.Discount
	if inv.Total < 0 {
		inv.Total = 0
	}
}

// Validate checks invariants before persisting.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.ClientName) == "" {
		return ErrInvalidClient
	}
	if len(inv.LineItems) == 0 {
		return ErrInvalidLineItems
	}
	for _, item := range inv.LineItems {
		if strings.TrimSpace(item.Description) == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return ErrInvalidLineItems
		}
	}
	if inv.Discount < 0 {
		return ErrInvalidAmount
	}
	if dateOnly(inv.DueDate).Before(dateOnly(inv.IssueDate)) {
		return ErrInvalidDueDate
	}
	return nil
}

// DisplayStatus returns the status shown to users. A sent invoice past
// its due date reads as overdue; due-today is not overdue.
func (inv *Invoice) DisplayStatus(asOf time.Time) string {
	if inv.Status == InvoiceStatusSent && dateOnly(inv.DueDate).Before(dateOnly(asOf)) {
		return StatusOverdue
	}
	return string(inv.Status)
}

// AmountDue returns the unpaid remainder, never negative.
func (inv *Invoice) AmountDue() float64 {
	due := inv.Total - inv.AmountPaid
	if due < 0 {
		return 0
	}
	return due
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ActivityType classifies invoice history entries.
type ActivityType string

const (
	ActivityCreated    ActivityType = "created"
	ActivityUpdated    ActivityType = "updated"
	ActivitySent       ActivityType = "sent"
	ActivityPaid       ActivityType = "paid"
	ActivityPayment    ActivityType = "payment_recorded"
	ActivityDuplicated ActivityType = "duplicated"
)

// InvoiceActivity is an audit trail entry for an invoice.
type InvoiceActivity struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index" json:"-"`
	Type      ActivityType `gorm:"type:text;not null" json:"type"`
	Note      string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceActivity) TableName() string { return "invoice_activities" }
