// Package domain contains subscription tiers and usage entitlements.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tier is the billing plan attached to an account.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Monthly quotas on the free tier. Premium is unlimited.
const (
	FreeInvoiceQuota = 5
	FreeExpenseQuota = 10
)

// Subscription is a paid premium period for a user.
type Subscription struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	UserID            snowflake.ID `gorm:"column:user_id;not null;uniqueIndex"`
	Tier              Tier         `gorm:"column:tier;type:text;not null"`
	PaystackReference string       `gorm:"column:paystack_reference;type:text"`
	AmountPaid        float64      `gorm:"column:amount_paid;not null;default:0"`
	ActivatedAt       time.Time    `gorm:"column:activated_at;not null"`
	ExpiresAt         time.Time    `gorm:"column:expires_at;not null;index"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// Active reports whether the subscription covers the given instant.
func (s *Subscription) Active(asOf time.Time) bool {
	return s.Tier == TierPremium && !asOf.After(s.ExpiresAt)
}

// Entitlement describes what the account may do this month.
type Entitlement struct {
	Tier         Tier       `json:"tier"`
	InvoiceQuota *int64     `json:"invoice_quota,omitempty"`
	ExpenseQuota *int64     `json:"expense_quota,omitempty"`
	InvoicesUsed int64      `json:"invoices_used"`
	ExpensesUsed int64      `json:"expenses_used"`
	RenewsAt     *time.Time `json:"renews_at,omitempty"`
}
