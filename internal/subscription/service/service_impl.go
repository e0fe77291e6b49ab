package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/subscription/domain"
	"go.uber.org/zap"
)

const premiumPeriod = 30 * 24 * time.Hour

// Gateway is the slice of the Paystack client the upgrade flow needs.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	gateway Gateway
	genID   *snowflake.Node
	clock   clock.Clock
	price   float64
}

func New(log *zap.Logger, repo domain.Repository, gateway Gateway, genID *snowflake.Node, clk clock.Clock, cfg config.Config) domain.Service {
	return &Service{
		log:     log.Named("subscription.service"),
		repo:    repo,
		gateway: gateway,
		genID:   genID,
		clock:   clk,
		price:   cfg.PremiumPlanAmount,
	}
}

func (s *Service) CurrentTier(ctx context.Context, userID snowflake.ID) (domain.Tier, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil || !sub.Active(s.clock.Now()) {
		return domain.TierFree, nil
	}
	return domain.TierPremium, nil
}

func (s *Service) Entitlement(ctx context.Context, userID snowflake.ID) (*domain.Entitlement, error) {
	now := s.clock.Now()
	monthStart, monthEnd := monthWindow(now)

	invoices, expenses, err := s.repo.MonthlyUsage(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ent := &domain.Entitlement{
		Tier:         domain.TierFree,
		InvoicesUsed: invoices,
		ExpensesUsed: expenses,
	}
	if sub != nil && sub.Active(now) {
		ent.Tier = domain.TierPremium
		renews := sub.ExpiresAt
		ent.RenewsAt = &renews
		return ent, nil
	}

	invoiceQuota := int64(domain.FreeInvoiceQuota)
	expenseQuota := int64(domain.FreeExpenseQuota)
	ent.InvoiceQuota = &invoiceQuota
	ent.ExpenseQuota = &expenseQuota
	return ent, nil
}

func (s *Service) CheckInvoiceQuota(ctx context.Context, userID snowflake.ID) error {
	return s.checkQuota(ctx, userID, func(invoices, _ int64) bool {
		return invoices >= domain.FreeInvoiceQuota
	})
}

func (s *Service) CheckExpenseQuota(ctx context.Context, userID snowflake.ID) error {
	return s.checkQuota(ctx, userID, func(_, expenses int64) bool {
		return expenses >= domain.FreeExpenseQuota
	})
}

func (s *Service) checkQuota(ctx context.Context, userID snowflake.ID, exceeded func(invoices, expenses int64) bool) error {
	tier, err := s.CurrentTier(ctx, userID)
	if err != nil {
		return err
	}
	if tier == domain.TierPremium {
		return nil
	}

	monthStart, monthEnd := monthWindow(s.clock.Now())
	invoices, expenses, err := s.repo.MonthlyUsage(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if exceeded(invoices, expenses) {
		return domain.ErrQuotaExceeded
	}
	return nil
}

func (s *Service) InitiateUpgrade(ctx context.Context, userID snowflake.ID, email string) (*domain.UpgradeCheckout, error) {
	res, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountNaira: s.price,
		Metadata: map[string]any{
			"user_id": userID.String(),
			"purpose": "premium_upgrade",
		},
	})
	if err != nil {
		return nil, err
	}
	return &domain.UpgradeCheckout{
		AuthorizationURL: res.AuthorizationURL,
		Reference:        res.Reference,
		AmountNaira:      s.price,
	}, nil
}

func (s *Service) CompleteUpgrade(ctx context.Context, userID snowflake.ID, reference string) (*domain.Subscription, error) {
	verified, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if verified.Status != "success" {
		return nil, domain.ErrPaymentNotSettled
	}
	if verified.AmountKobo < paystack.ToKobo(s.price) {
		return nil, domain.ErrAmountMismatch
	}

	now := s.clock.Now()
	sub := &domain.Subscription{
		ID:                s.genID.Generate(),
		UserID:            userID,
		Tier:              domain.TierPremium,
		PaystackReference: verified.Reference,
		AmountPaid:        float64(verified.AmountKobo) / 100,
		ActivatedAt:       now,
		ExpiresAt:         now.Add(premiumPeriod),
		UpdatedAt:         now,
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("premium activated",
		zap.String("user_id", userID.String()),
		zap.String("reference", verified.Reference),
		zap.Time("expires_at", sub.ExpiresAt),
	)
	return sub, nil
}

func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
