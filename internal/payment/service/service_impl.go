package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/clock"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/smallbiznis/bizflow/pkg/query"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Gateway is the slice of the Paystack client the payment flow needs.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Clock    clock.Clock
	Gateway  Gateway
	Invoices invoicedomain.Service
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	gateway  Gateway
	invoices invoicedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		gateway:  p.Gateway,
		invoices: p.Invoices,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (*domain.PaymentIntent, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	payment := &domain.Payment{
		ID:          s.genID.Generate(),
		UserID:      userID,
		InvoiceID:   req.InvoiceID,
		ClientName:  strings.TrimSpace(req.ClientName),
		Amount:      req.Amount,
		Method:      req.Method,
		Status:      domain.StatusCompleted,
		CreditTerms: req.CreditTerms,
		Date:        date,
		Notes:       strings.TrimSpace(req.Notes),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	intent := &domain.PaymentIntent{Payment: payment}
	// Credit payments settle when the agreed terms elapse, not at
	// record time.
	if req.Method == domain.MethodCredit {
		payment.Status = domain.StatusPending
	}
	if req.Method == domain.MethodPaystack {
		payment.Status = domain.StatusPending
		payment.Reference = paystack.NewReference()

		res, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
			Email:       req.Email,
			AmountNaira: req.Amount,
			Reference:   payment.Reference,
			Metadata: map[string]any{
				"user_id":    userID.String(),
				"payment_id": payment.ID.String(),
			},
		})
		if err != nil {
			return nil, err
		}
		intent.AuthorizationURL = res.AuthorizationURL
	}

	if err := s.repo.Insert(ctx, payment); err != nil {
		return nil, err
	}

	if payment.Status == domain.StatusCompleted {
		s.applyToInvoice(ctx, payment)
	}
	return intent, nil
}

// applyToInvoice credits a settled payment against its invoice. A
// missing invoice is tolerated because the link is weak.
func (s *Service) applyToInvoice(ctx context.Context, payment *domain.Payment) {
	if payment.InvoiceID == nil {
		return
	}
	if _, err := s.invoices.ApplyPayment(ctx, *payment.InvoiceID, payment.Amount); err != nil {
		if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
			return
		}
		s.log.Warn("failed to apply payment to invoice",
			zap.String("payment_id", payment.ID.String()),
			zap.String("invoice_id", payment.InvoiceID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, userID, id)
}

func (s *Service) RecordForInvoice(ctx context.Context, invoiceID snowflake.ID, clientName string, amount float64, method domain.Method) (*domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if method == "" {
		method = domain.MethodCash
	}

	now := s.clock.Now()
	payment := &domain.Payment{
		ID:         s.genID.Generate(),
		UserID:     userID,
		InvoiceID:  &invoiceID,
		ClientName: strings.TrimSpace(clientName),
		Amount:     amount,
		Method:     method,
		Status:     domain.StatusCompleted,
		Date:       now,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) ListForInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByInvoice(ctx, userID, invoiceID)
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	payments, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	pred := query.And(
		statusPredicate(req.Status),
		methodPredicate(req.Method),
		query.TextSearch(req.Search, func(p domain.Payment) []string {
			return []string{p.ClientName, p.Reference}
		}),
		query.DateBetween(req.DateFrom, req.DateTo, func(p domain.Payment) time.Time {
			return p.Date
		}),
		query.AmountBetween(req.MinAmount, req.MaxAmount, func(p domain.Payment) float64 {
			return p.Amount
		}),
	)

	cmp := query.Directed(sortComparator(req.SortBy), query.ParseDirection(req.SortDir))
	return query.Apply(payments, pred, cmp), nil
}

func statusPredicate(status string) query.Predicate[domain.Payment] {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return nil
	}
	return func(p domain.Payment) bool {
		return string(p.Status) == status
	}
}

func methodPredicate(method string) query.Predicate[domain.Payment] {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" || method == "all" {
		return nil
	}
	return func(p domain.Payment) bool {
		return string(p.Method) == method
	}
}

func sortComparator(sortBy string) query.Comparator[domain.Payment] {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "amount":
		return query.ByFloat64(func(p domain.Payment) float64 { return p.Amount })
	case "client":
		return query.ByString(func(p domain.Payment) string { return p.ClientName })
	default:
		return query.ByTime(func(p domain.Payment) time.Time { return p.Date })
	}
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) Stats(ctx context.Context) (*domain.PaymentStats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	payments, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	prevMonth := now.AddDate(0, -1, 0)
	amount := func(p domain.Payment) float64 { return p.Amount }

	var completedThisMonth, completedPrevMonth, pending []domain.Payment
	stats := &domain.PaymentStats{}
	for _, p := range payments {
		switch p.Status {
		case domain.StatusCompleted:
			if query.SameMonth(p.Date, now) {
				completedThisMonth = append(completedThisMonth, p)
			} else if query.SameMonth(p.Date, prevMonth) {
				completedPrevMonth = append(completedPrevMonth, p)
			}
		case domain.StatusPending:
			pending = append(pending, p)
		case domain.StatusFailed:
			stats.FailedCount++
		}
	}

	current := query.Summarize(completedThisMonth, amount)
	previous := query.Summarize(completedPrevMonth, amount)
	pendingSummary := query.Summarize(pending, amount)

	stats.MonthRevenue = current.Sum
	stats.PrevMonthRevenue = previous.Sum
	stats.PercentChange = query.PercentChange(current.Sum, previous.Sum)
	stats.PendingAmount = pendingSummary.Sum
	stats.PendingCount = pendingSummary.Count
	stats.ByMethod = query.SortBySum(query.BreakdownBy(completedThisMonth,
		func(p domain.Payment) string { return string(p.Method) },
		amount,
	))
	return stats, nil
}

func (s *Service) VerifyPaystack(ctx context.Context, reference string) (*domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	payment, err := s.repo.FindByReference(ctx, userID, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.StatusPending {
		return nil, domain.ErrNotPending
	}

	verified, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if verified.Status == "success" {
		payment.Status = domain.StatusCompleted
		payment.Metadata["channel"] = verified.Channel
	} else {
		payment.Status = domain.StatusFailed
		payment.Metadata["gateway_response"] = verified.GatewayResp
	}
	payment.UpdatedAt = now
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, err
	}

	if payment.Status == domain.StatusCompleted {
		s.applyToInvoice(ctx, payment)
	}
	return payment, nil
}
