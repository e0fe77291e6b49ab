package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/expense/domain"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/smallbiznis/bizflow/pkg/query"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
	Quota subscriptiondomain.Service
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
	quota subscriptiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
		quota: p.Quota,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateExpenseRequest) (*domain.Expense, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.quota.CheckExpenseQuota(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	expense := &domain.Expense{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Description:   strings.TrimSpace(req.Description),
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Vendor:        strings.TrimSpace(req.Vendor),
		Date:          date,
		HasReceipt:    req.HasReceipt,
		ReceiptURL:    strings.TrimSpace(req.ReceiptURL),
		Notes:         strings.TrimSpace(req.Notes),
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Expense, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListExpenseRequest) ([]domain.Expense, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	expenses, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	pred := query.And(
		categoryPredicate(req.Category),
		methodPredicate(req.Method),
		query.TextSearch(req.Search, func(e domain.Expense) []string {
			return []string{e.Description, e.Vendor, string(e.Category)}
		}),
		query.Equals(req.HasReceipt, func(e domain.Expense) bool {
			return e.HasReceipt
		}),
		query.DateBetween(req.DateFrom, req.DateTo, func(e domain.Expense) time.Time {
			return e.Date
		}),
		query.AmountBetween(req.MinAmount, req.MaxAmount, func(e domain.Expense) float64 {
			return e.Amount
		}),
	)

	cmp := query.Directed(sortComparator(req.SortBy), query.ParseDirection(req.SortDir))
	return query.Apply(expenses, pred, cmp), nil
}

func categoryPredicate(category string) query.Predicate[domain.Expense] {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return nil
	}
	return func(e domain.Expense) bool {
		return string(e.Category) == category
	}
}

func methodPredicate(method string) query.Predicate[domain.Expense] {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" || method == "all" {
		return nil
	}
	return func(e domain.Expense) bool {
		return string(e.PaymentMethod) == method
	}
}

func sortComparator(sortBy string) query.Comparator[domain.Expense] {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "amount":
		return query.ByFloat64(func(e domain.Expense) float64 { return e.Amount })
	case "category":
		return query.ByString(func(e domain.Expense) string { return string(e.Category) })
	case "vendor":
		return query.ByString(func(e domain.Expense) string { return e.Vendor })
	default:
		return query.ByTime(func(e domain.Expense) time.Time { return e.Date })
	}
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateExpenseRequest) (*domain.Expense, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	expense, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		expense.Description = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Vendor != nil {
		expense.Vendor = strings.TrimSpace(*req.Vendor)
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	if req.HasReceipt != nil {
		expense.HasReceipt = *req.HasReceipt
	}
	if req.ReceiptURL != nil {
		expense.ReceiptURL = strings.TrimSpace(*req.ReceiptURL)
	}
	if req.Notes != nil {
		expense.Notes = strings.TrimSpace(*req.Notes)
	}
	expense.UpdatedAt = s.clock.Now()

	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) BulkDelete(ctx context.Context, ids []snowflake.ID) (int64, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	deleted, err := s.repo.DeleteMany(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	s.log.Info("bulk deleted expenses",
		zap.String("user_id", userID.String()),
		zap.Int64("deleted", deleted),
		zap.Int("requested", len(ids)),
	)
	return deleted, nil
}

func (s *Service) Stats(ctx context.Context) (*domain.ExpenseStats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	expenses, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	prevMonth := now.AddDate(0, -1, 0)

	var thisMonth, lastMonth []domain.Expense
	for _, e := range expenses {
		switch {
		case query.SameMonth(e.Date, now):
			thisMonth = append(thisMonth, e)
		case query.SameMonth(e.Date, prevMonth):
			lastMonth = append(lastMonth, e)
		}
	}

	amount := func(e domain.Expense) float64 { return e.Amount }
	current := query.Summarize(thisMonth, amount)
	previous := query.Summarize(lastMonth, amount)

	byCategory := query.SortBySum(query.BreakdownBy(thisMonth,
		func(e domain.Expense) string { return string(e.Category) },
		amount,
	))

	stats := &domain.ExpenseStats{
		MonthTotal:     current.Sum,
		PrevMonthTotal: previous.Sum,
		PercentChange:  query.PercentChange(current.Sum, previous.Sum),
		MonthCount:     current.Count,
		ByCategory:     byCategory,
	}
	if len(byCategory) > 0 {
		stats.TopCategory = byCategory[0].Key
	}
	return stats, nil
}

func (s *Service) ExportCSV(ctx context.Context, req domain.ListExpenseRequest) ([]byte, error) {
	expenses, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "description", "category", "payment_method", "vendor", "amount", "has_receipt", "notes"}); err != nil {
		return nil, err
	}
	for _, e := range expenses {
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Description,
			string(e.Category),
			string(e.PaymentMethod),
			e.Vendor,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			strconv.FormatBool(e.HasReceipt),
			e.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
