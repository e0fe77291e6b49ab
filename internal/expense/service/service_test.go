package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/expense/domain"
	"github.com/smallbiznis/bizflow/internal/expense/repository"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeQuota struct {
	expenseErr error
}

func (f *fakeQuota) CurrentTier(ctx context.Context, userID snowflake.ID) (subscriptiondomain.Tier, error) {
	return subscriptiondomain.TierFree, nil
}

func (f *fakeQuota) Entitlement(ctx context.Context, userID snowflake.ID) (*subscriptiondomain.Entitlement, error) {
	return &subscriptiondomain.Entitlement{Tier: subscriptiondomain.TierFree}, nil
}

func (f *fakeQuota) CheckInvoiceQuota(ctx context.Context, userID snowflake.ID) error { return nil }

func (f *fakeQuota) CheckExpenseQuota(ctx context.Context, userID snowflake.ID) error {
	return f.expenseErr
}

func (f *fakeQuota) InitiateUpgrade(ctx context.Context, userID snowflake.ID, email string) (*subscriptiondomain.UpgradeCheckout, error) {
	return nil, nil
}

func (f *fakeQuota) CompleteUpgrade(ctx context.Context, userID snowflake.ID, reference string) (*subscriptiondomain.Subscription, error) {
	return nil, nil
}

func newTestService(t *testing.T, clk clock.Clock, quota *fakeQuota) domain.Service {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Expense{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(dbConn),
		Clock: clk,
		Quota: quota,
	})
}

func authedCtx(userID snowflake.ID) context.Context {
	return usercontext.WithUserID(context.Background(), userID)
}

func testClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
}

func expenseRequest(desc string, amount float64, category domain.Category, date time.Time) domain.CreateExpenseRequest {
	return domain.CreateExpenseRequest{
		Description:   desc,
		Amount:        amount,
		Category:      category,
		PaymentMethod: domain.MethodCash,
		Date:          date,
	}
}

func seedMonth(t *testing.T, svc domain.Service, ctx context.Context, clk *clock.FakeClock) {
	t.Helper()
	for _, tc := range []struct {
		desc     string
		amount   float64
		category domain.Category
	}{
		{"Fuel for generator", 15000, domain.CategoryFuel},
		{"Office rent", 250000, domain.CategoryRent},
		{"Printer paper", 8500, domain.CategoryOfficeSupplies},
		{"Facebook ads", 45000, domain.CategoryMarketing},
		{"Diesel top-up", 22000, domain.CategoryFuel},
	} {
		_, err := svc.Create(ctx, expenseRequest(tc.desc, tc.amount, tc.category, clk.Now()))
		require.NoError(t, err)
	}
}

func TestCreateValidatesReceiptConsistency(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	req := expenseRequest("Fuel", 5000, domain.CategoryFuel, clk.Now())
	req.HasReceipt = true
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrReceiptMismatch)

	req.ReceiptURL = "https://cdn.example.com/r/1.jpg"
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.True(t, created.HasReceipt)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})

	req := expenseRequest("Mystery", 5000, domain.Category("groceries"), clk.Now())
	_, err := svc.Create(authedCtx(1), req)
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestCreateEnforcesQuota(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{expenseErr: subscriptiondomain.ErrQuotaExceeded})

	_, err := svc.Create(authedCtx(1), expenseRequest("Fuel", 5000, domain.CategoryFuel, clk.Now()))
	require.ErrorIs(t, err, subscriptiondomain.ErrQuotaExceeded)
}

func TestListFiltersByCategory(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)
	seedMonth(t, svc, ctx, clk)

	expenses, err := svc.List(ctx, domain.ListExpenseRequest{Category: "fuel"})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	for _, e := range expenses {
		require.Equal(t, domain.CategoryFuel, e.Category)
	}
}

func TestListFiltersByReceiptPresence(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)
	seedMonth(t, svc, ctx, clk)

	req := expenseRequest("Office rent receipt copy", 250000, domain.CategoryRent, clk.Now())
	req.HasReceipt = true
	req.ReceiptURL = "https://cdn.example.com/r/rent.jpg"
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	withReceipt := true
	expenses, err := svc.List(ctx, domain.ListExpenseRequest{HasReceipt: &withReceipt})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.True(t, expenses[0].HasReceipt)

	withoutReceipt := false
	expenses, err = svc.List(ctx, domain.ListExpenseRequest{HasReceipt: &withoutReceipt})
	require.NoError(t, err)
	require.Len(t, expenses, 5)

	expenses, err = svc.List(ctx, domain.ListExpenseRequest{})
	require.NoError(t, err)
	require.Len(t, expenses, 6)
}

func TestListSortsByAmountDescending(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)
	seedMonth(t, svc, ctx, clk)

	expenses, err := svc.List(ctx, domain.ListExpenseRequest{SortBy: "amount", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, expenses, 5)
	for i := 1; i < len(expenses); i++ {
		require.GreaterOrEqual(t, expenses[i-1].Amount, expenses[i].Amount)
	}
	require.Equal(t, float64(250000), expenses[0].Amount)
}

func TestStatsMonthOverMonth(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	_, err := svc.Create(ctx, expenseRequest("Old rent", 100000, domain.CategoryRent, clk.Now()))
	require.NoError(t, err)

	clk.Advance(30 * 24 * time.Hour)
	_, err = svc.Create(ctx, expenseRequest("New rent", 150000, domain.CategoryRent, clk.Now()))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(150000), stats.MonthTotal)
	require.Equal(t, float64(100000), stats.PrevMonthTotal)
	require.InDelta(t, 50, stats.PercentChange, 0.01)
	require.Equal(t, "rent", stats.TopCategory)
}

func TestStatsNoPriorMonthIsZeroChange(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)

	_, err := svc.Create(ctx, expenseRequest("Fuel", 15000, domain.CategoryFuel, clk.Now()))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(0), stats.PercentChange)
	require.Equal(t, int64(1), stats.MonthCount)
}

func TestBulkDeleteScopedToOwner(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})

	mine, err := svc.Create(authedCtx(1), expenseRequest("Fuel", 5000, domain.CategoryFuel, clk.Now()))
	require.NoError(t, err)
	other, err := svc.Create(authedCtx(2), expenseRequest("Fuel", 5000, domain.CategoryFuel, clk.Now()))
	require.NoError(t, err)

	deleted, err := svc.BulkDelete(authedCtx(1), []snowflake.ID{mine.ID, other.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	remaining, err := svc.List(authedCtx(2), domain.ListExpenseRequest{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestExportCSV(t *testing.T) {
	clk := testClock()
	svc := newTestService(t, clk, &fakeQuota{})
	ctx := authedCtx(1)
	seedMonth(t, svc, ctx, clk)

	out, err := svc.ExportCSV(ctx, domain.ListExpenseRequest{Category: "fuel"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "description")
	require.Contains(t, string(out), "Fuel for generator")
	require.Contains(t, string(out), "15000.00")
}
