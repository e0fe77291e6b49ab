package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/invoice/domain"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/smallbiznis/bizflow/pkg/db"
	"github.com/smallbiznis/bizflow/pkg/query"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const numberAttempts = 3

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Clock    clock.Clock
	Quota    subscriptiondomain.Service
	Accounts authdomain.Service
	Renderer domain.Renderer
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	quota    subscriptiondomain.Service
	accounts authdomain.Service
	renderer domain.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		quota:    p.Quota,
		accounts: p.Accounts,
		renderer: p.Renderer,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.quota.CheckInvoiceQuota(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	taxRate := domain.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	invoice := &domain.Invoice{
		ID:          s.genID.Generate(),
		UserID:      userID,
		ClientID:    req.ClientID,
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.TrimSpace(req.ClientEmail),
		Status:      domain.InvoiceStatusDraft,
		IssueDate:   issueDate,
		DueDate:     req.DueDate,
		LineItems:   datatypes.NewJSONSlice(req.LineItems),
		TaxRate:     taxRate,
		Discount:    req.Discount,
		Notes:       strings.TrimSpace(req.Notes),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	invoice.ComputeTotals()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.insertWithNumber(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, invoice, domain.ActivityCreated, "invoice created")
	return invoice, nil
}

// insertWithNumber assigns the next sequential number, retrying on a
// duplicate when concurrent creates race for the same sequence.
func (s *Service) insertWithNumber(ctx context.Context, invoice *domain.Invoice) error {
	count, err := s.repo.Count(ctx, invoice.UserID)
	if err != nil {
		return err
	}

	seq := count + 1
	for attempt := 0; attempt < numberAttempts; attempt++ {
		invoice.InvoiceNumber = fmt.Sprintf("INV-%04d", seq)
		err = s.repo.Insert(ctx, invoice)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		seq++
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.InvoiceView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(*invoice)
	return &view, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.InvoiceView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoices, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.InvoiceView, 0, len(invoices))
	for _, invoice := range invoices {
		views = append(views, s.toView(invoice))
	}

	pred := query.And(
		statusPredicate(req.Status),
		query.TextSearch(req.Search, func(v domain.InvoiceView) []string {
			return []string{v.InvoiceNumber, v.ClientName, v.ClientEmail}
		}),
		query.DateBetween(req.DateFrom, req.DateTo, func(v domain.InvoiceView) time.Time {
			return v.IssueDate
		}),
		query.AmountBetween(req.MinAmount, req.MaxAmount, func(v domain.InvoiceView) float64 {
			return v.Total
		}),
	)

	cmp := query.Directed(sortComparator(req.SortBy), query.ParseDirection(req.SortDir))
	return query.Apply(views, pred, cmp), nil
}

func statusPredicate(status string) query.Predicate[domain.InvoiceView] {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return nil
	}
	return func(v domain.InvoiceView) bool {
		return v.DisplayStatus == status
	}
}

func sortComparator(sortBy string) query.Comparator[domain.InvoiceView] {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "amount":
		return query.ByFloat64(func(v domain.InvoiceView) float64 { return v.Total })
	case "client":
		return query.ByString(func(v domain.InvoiceView) string { return v.ClientName })
	case "due_date":
		return query.ByTime(func(v domain.InvoiceView) time.Time { return v.DueDate })
	default:
		return query.ByTime(func(v domain.InvoiceView) time.Time { return v.IssueDate })
	}
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrNotEditable
	}

	if req.ClientID != nil {
		invoice.ClientID = req.ClientID
	}
	if req.ClientName != nil {
		invoice.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.ClientEmail != nil {
		invoice.ClientEmail = strings.TrimSpace(*req.ClientEmail)
	}
	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.LineItems != nil {
		invoice.LineItems = datatypes.NewJSONSlice(req.LineItems)
	}
	if req.TaxRate != nil {
		invoice.TaxRate = *req.TaxRate
	}
	if req.Discount != nil {
		invoice.Discount = *req.Discount
	}
	if req.Notes != nil {
		invoice.Notes = strings.TrimSpace(*req.Notes)
	}
	invoice.UpdatedAt = s.clock.Now()

	invoice.ComputeTotals()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, invoice, domain.ActivityUpdated, "invoice updated")
	return invoice, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) Send(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	invoice.Status = domain.InvoiceStatusSent
	invoice.SentAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, invoice, domain.ActivitySent, "invoice sent to "+invoice.ClientName)
	return invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	invoice.Status = domain.InvoiceStatusPaid
	invoice.AmountPaid = invoice.Total
	invoice.PaidAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, invoice, domain.ActivityPaid, "invoice marked as paid")
	return invoice, nil
}

func (s *Service) ApplyPayment(ctx context.Context, id snowflake.ID, amount float64) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceStatusSent {
		return nil, domain.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	invoice.AmountPaid += amount
	if invoice.AmountPaid >= invoice.Total {
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &now
	}
	invoice.UpdatedAt = now
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, invoice, domain.ActivityPayment, fmt.Sprintf("payment of %.2f recorded", amount))
	return invoice, nil
}

func (s *Service) Duplicate(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.quota.CheckInvoiceQuota(ctx, userID); err != nil {
		return nil, err
	}

	source, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	copied := &domain.Invoice{
		ID:          s.genID.Generate(),
		UserID:      userID,
		ClientID:    source.ClientID,
		ClientName:  source.ClientName,
		ClientEmail: source.ClientEmail,
		Status:      domain.InvoiceStatusDraft,
		IssueDate:   now,
		DueDate:     now.Add(source.DueDate.Sub(source.IssueDate)),
		LineItems:   datatypes.NewJSONSlice([]domain.LineItem(source.LineItems)),
		TaxRate:     source.TaxRate,
		Discount:    source.Discount,
		Notes:       source.Notes,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	copied.ComputeTotals()

	if err := s.insertWithNumber(ctx, copied); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, copied, domain.ActivityDuplicated, "duplicated from "+source.InvoiceNumber)
	return copied, nil
}

func (s *Service) Stats(ctx context.Context) (*domain.InvoiceStats, error) {
	views, err := s.List(ctx, domain.ListInvoiceRequest{})
	if err != nil {
		return nil, err
	}

	byStatus := query.BreakdownBy(views,
		func(v domain.InvoiceView) string { return v.DisplayStatus },
		func(v domain.InvoiceView) float64 { return v.Total },
	)

	stats := &domain.InvoiceStats{TotalCount: int64(len(views))}
	for _, entry := range byStatus {
		stats.TotalValue += entry.Sum
		switch entry.Key {
		case string(domain.InvoiceStatusDraft):
			stats.DraftCount = entry.Count
		case string(domain.InvoiceStatusSent):
			stats.SentCount = entry.Count
			stats.PendingValue = entry.Sum
		case string(domain.InvoiceStatusPaid):
			stats.PaidCount = entry.Count
			stats.PaidValue = entry.Sum
		case domain.StatusOverdue:
			stats.OverdueCount = entry.Count
			stats.OverdueValue = entry.Sum
		}
	}
	return stats, nil
}

func (s *Service) RenderPDF(ctx context.Context, id snowflake.ID) ([]byte, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	businessName := ""
	if user, err := s.accounts.GetUser(ctx, userID); err == nil {
		businessName = user.BusinessName
	}

	return s.renderer.RenderInvoice(ctx, *invoice, businessName)
}

func (s *Service) Activities(ctx context.Context, id snowflake.ID) ([]domain.InvoiceActivity, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.FindActivities(ctx, userID, id)
}

func (s *Service) toView(invoice domain.Invoice) domain.InvoiceView {
	return domain.InvoiceView{
		Invoice:       invoice,
		DisplayStatus: invoice.DisplayStatus(s.clock.Now()),
	}
}

func (s *Service) recordActivity(ctx context.Context, invoice *domain.Invoice, activityType domain.ActivityType, note string) {
	activity := &domain.InvoiceActivity{
		ID:        s.genID.Generate(),
		InvoiceID: invoice.ID,
		UserID:    invoice.UserID,
		Type:      activityType,
		Note:      note,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertActivity(ctx, activity); err != nil {
		s.log.Warn("failed to record invoice activity",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("type", string(activityType)),
			zap.Error(err),
		)
	}
}
