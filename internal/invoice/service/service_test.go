package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/invoice/domain"
	"github.com/smallbiznis/bizflow/internal/invoice/repository"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeQuota struct {
	invoiceErr error
}

func (f *fakeQuota) CurrentTier(ctx context.Context, userID snowflake.ID) (subscriptiondomain.Tier, error) {
	return subscriptiondomain.TierFree, nil
}

func (f *fakeQuota) Entitlement(ctx context.Context, userID snowflake.ID) (*subscriptiondomain.Entitlement, error) {
	return &subscriptiondomain.Entitlement{Tier: subscriptiondomain.TierFree}, nil
}

func (f *fakeQuota) CheckInvoiceQuota(ctx context.Context, userID snowflake.ID) error {
	return f.invoiceErr
}

func (f *fakeQuota) CheckExpenseQuota(ctx context.Context, userID snowflake.ID) error {
	return nil
}

func (f *fakeQuota) InitiateUpgrade(ctx context.Context, userID snowflake.ID, email string) (*subscriptiondomain.UpgradeCheckout, error) {
	return nil, nil
}

func (f *fakeQuota) CompleteUpgrade(ctx context.Context, userID snowflake.ID, reference string) (*subscriptiondomain.Subscription, error) {
	return nil, nil
}

type fakeAccounts struct{}

func (f *fakeAccounts) SignUp(ctx context.Context, req authdomain.SignUpRequest) (*authdomain.User, error) {
	return nil, authdomain.ErrUserNotFound
}

func (f *fakeAccounts) SignIn(ctx context.Context, req authdomain.SignInRequest) (*authdomain.SignInResult, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (f *fakeAccounts) SignOut(ctx context.Context, rawToken string) error { return nil }

func (f *fakeAccounts) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	return nil, authdomain.ErrInvalidSession
}

func (f *fakeAccounts) GetUser(ctx context.Context, id snowflake.ID) (*authdomain.User, error) {
	return &authdomain.User{ID: id, BusinessName: "Test Business"}, nil
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	return nil
}

type fakeRenderer struct{}

func (f *fakeRenderer) RenderInvoice(ctx context.Context, invoice domain.Invoice, businessName string) ([]byte, error) {
	return []byte("%PDF-1.4 " + invoice.InvoiceNumber + " " + businessName), nil
}

func newTestService(t *testing.T, clk clock.Clock, quota *fakeQuota) domain.Service {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Invoice{}, &domain.InvoiceActivity{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.New(dbConn),
		Clock:    clk,
		Quota:    quota,
		Accounts: &fakeAccounts{},
		Renderer: &fakeRenderer{},
	})
}

func authedCtx(userID snowflake.ID) context.Context {
	return usercontext.WithUserID(context.Background(), userID)
}

func testClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
}

func createRequest(client string, amount float64, due time.Time) domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		ClientName:  client,
		ClientEmail: "billing@example.com",
		DueDate:     due,
		LineItems: []domain.LineItem{
			{Description: "Services rendered", Quantity: 1, UnitPrice: amount},
		},
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	first, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	require.Equal(t, "INV-0001", first.InvoiceNumber)
	require.Equal(t, domain.InvoiceStatusDraft, first.Status)

	second, err := svc.Create(ctx, createRequest("Umbrella", 2000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	require.Equal(t, "INV-0002", second.InvoiceNumber)
}

func TestCreateComputesTotals(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})

	inv, err := svc.Create(authedCtx(1), domain.CreateInvoiceRequest{
		ClientName: "Acme",
		DueDate:    clk.Now().AddDate(0, 0, 30),
		LineItems: []domain.LineItem{
			{Description: "Website design", Quantity: 1, UnitPrice: 180000},
			{Description: "Hosting setup", Quantity: 2, UnitPrice: 50000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(280000), inv.Subtotal)
	require.Equal(t, float64(21000), inv.TaxAmount)
	require.Equal(t, float64(301000), inv.Total)
}

func TestCreateEnforcesQuota(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{invoiceErr: subscriptiondomain.ErrQuotaExceeded})

	_, err := svc.Create(authedCtx(1), createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.ErrorIs(t, err, subscriptiondomain.ErrQuotaExceeded)
}

func TestSendOnlyFromDraft(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)

	sent, err := svc.Send(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	_, err = svc.Send(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestMarkPaidFromSent(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.Equal(t, paid.Total, paid.AmountPaid)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestMarkPaidFromDraft(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusDraft, inv.Status)

	paid, err := svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.Equal(t, paid.Total, paid.AmountPaid)
	require.NotNil(t, paid.PaidAt)
}

func TestApplyPaymentPartialThenSettled(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 100000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)

	partial, err := svc.ApplyPayment(ctx, inv.ID, 50000)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusSent, partial.Status)
	require.Equal(t, float64(50000), partial.AmountPaid)

	settled, err := svc.ApplyPayment(ctx, inv.ID, partial.AmountDue())
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusPaid, settled.Status)
	require.Equal(t, float64(0), settled.AmountDue())
}

func TestListDerivesOverdue(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 7)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)

	clk.Advance(8 * 24 * time.Hour)

	views, err := svc.List(ctx, domain.ListInvoiceRequest{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, domain.StatusOverdue, views[0].DisplayStatus)
	// Stored status stays sent.
	require.Equal(t, domain.InvoiceStatusSent, views[0].Status)
}

func TestListFiltersAndSorts(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	for _, tc := range []struct {
		client string
		amount float64
	}{
		{"Acme Corp", 85000},
		{"Umbrella Ltd", 250000},
		{"Acme West", 120000},
	} {
		_, err := svc.Create(ctx, createRequest(tc.client, tc.amount, clk.Now().AddDate(0, 0, 14)))
		require.NoError(t, err)
	}

	views, err := svc.List(ctx, domain.ListInvoiceRequest{Search: "acme", SortBy: "amount", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.True(t, views[0].Total >= views[1].Total)

	minAmount := 100000.0
	views, err = svc.List(ctx, domain.ListInvoiceRequest{MinAmount: &minAmount})
	require.NoError(t, err)
	require.Len(t, views, 2)
}

func TestDuplicateResetsLifecycle(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 100000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)

	copied, err := svc.Duplicate(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusDraft, copied.Status)
	require.Equal(t, "INV-0002", copied.InvoiceNumber)
	require.Equal(t, inv.Total, copied.Total)
	require.Zero(t, copied.AmountPaid)
	require.Nil(t, copied.PaidAt)
}

func TestStatsBreakdown(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	draft, err := svc.Create(ctx, createRequest("Draft Co", 10000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_ = draft

	sent, err := svc.Create(ctx, createRequest("Sent Co", 20000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, sent.ID)
	require.NoError(t, err)

	paid, err := svc.Create(ctx, createRequest("Paid Co", 30000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, paid.ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, paid.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalCount)
	require.Equal(t, int64(1), stats.DraftCount)
	require.Equal(t, int64(1), stats.SentCount)
	require.Equal(t, int64(1), stats.PaidCount)
	require.Equal(t, int64(0), stats.OverdueCount)
	require.InDelta(t, 21500, stats.PendingValue, 0.01)
	require.InDelta(t, 32250, stats.PaidValue, 0.01)
}

func TestRenderPDFIncludesBusinessName(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)

	doc, err := svc.RenderPDF(ctx, inv.ID)
	require.NoError(t, err)
	require.Contains(t, string(doc), inv.InvoiceNumber)
	require.Contains(t, string(doc), "Test Business")
}

func TestActivitiesRecorded(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	inv, err := svc.Create(ctx, createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)
	_, err = svc.Send(ctx, inv.ID)
	require.NoError(t, err)

	activities, err := svc.Activities(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
}

func TestCrossUserIsolation(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})

	inv, err := svc.Create(authedCtx(1), createRequest("Acme", 1000, clk.Now().AddDate(0, 0, 14)))
	require.NoError(t, err)

	_, err = svc.GetByID(authedCtx(2), inv.ID)
	require.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
