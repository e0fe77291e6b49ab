package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// CurrentTier resolves the effective tier, expiring lapsed premium.
	CurrentTier(ctx context.Context, userID snowflake.ID) (Tier, error)
	Entitlement(ctx context.Context, userID snowflake.ID) (*Entitlement, error)
	CheckInvoiceQuota(ctx context.Context, userID snowflake.ID) error
	CheckExpenseQuota(ctx context.Context, userID snowflake.ID) error
	// InitiateUpgrade starts a Paystack checkout for the premium plan.
	InitiateUpgrade(ctx context.Context, userID snowflake.ID, email string) (*UpgradeCheckout, error)
	// CompleteUpgrade verifies the Paystack reference and activates premium.
	CompleteUpgrade(ctx context.Context, userID snowflake.ID, reference string) (*Subscription, error)
}

type UpgradeCheckout struct {
	AuthorizationURL string  `json:"authorization_url"`
	Reference        string  `json:"reference"`
	AmountNaira      float64 `json:"amount"`
}
