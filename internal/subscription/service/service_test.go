package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/subscription/domain"
	"github.com/smallbiznis/bizflow/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGateway struct {
	verifyStatus string
	verifyAmount int64
}

func (f *fakeGateway) Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/fake",
		AccessCode:       "fake",
		Reference:        "BF-FAKEREF",
	}, nil
}

func (f *fakeGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	return &paystack.VerifyResult{
		Reference:  reference,
		Status:     f.verifyStatus,
		AmountKobo: f.verifyAmount,
		Currency:   "NGN",
	}, nil
}

func newTestService(t *testing.T, clk clock.Clock, gw *fakeGateway) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Subscription{}))
	require.NoError(t, dbConn.Exec("CREATE TABLE invoices (user_id integer, created_at datetime)").Error)
	require.NoError(t, dbConn.Exec("CREATE TABLE expenses (user_id integer, created_at datetime)").Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(zap.NewNop(), repository.New(dbConn), gw, node, clk, config.Config{PremiumPlanAmount: 4500})
	return svc, dbConn
}

func seedUsage(t *testing.T, db *gorm.DB, table string, userID snowflake.ID, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Exec("INSERT INTO "+table+" (user_id, created_at) VALUES (?, ?)", userID, at).Error)
	}
}

func TestFreeTierInvoiceQuota(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	svc, db := newTestService(t, clk, &fakeGateway{})
	userID := snowflake.ID(42)

	seedUsage(t, db, "invoices", userID, 4, clk.Now())
	require.NoError(t, svc.CheckInvoiceQuota(context.Background(), userID))

	seedUsage(t, db, "invoices", userID, 1, clk.Now())
	require.ErrorIs(t, svc.CheckInvoiceQuota(context.Background(), userID), domain.ErrQuotaExceeded)
}

func TestQuotaResetsNextMonth(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	svc, db := newTestService(t, clk, &fakeGateway{})
	userID := snowflake.ID(42)

	seedUsage(t, db, "expenses", userID, 10, clk.Now())
	require.ErrorIs(t, svc.CheckExpenseQuota(context.Background(), userID), domain.ErrQuotaExceeded)

	clk.Advance(2 * time.Hour)
	require.NoError(t, svc.CheckExpenseQuota(context.Background(), userID))
}

func TestPremiumBypassesQuota(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	gw := &fakeGateway{verifyStatus: "success", verifyAmount: 450000}
	svc, db := newTestService(t, clk, gw)
	userID := snowflake.ID(42)

	seedUsage(t, db, "invoices", userID, 20, clk.Now())

	sub, err := svc.CompleteUpgrade(context.Background(), userID, "BF-FAKEREF")
	require.NoError(t, err)
	require.Equal(t, domain.TierPremium, sub.Tier)
	require.Equal(t, float64(4500), sub.AmountPaid)

	require.NoError(t, svc.CheckInvoiceQuota(context.Background(), userID))

	tier, err := svc.CurrentTier(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, domain.TierPremium, tier)
}

func TestPremiumLapsesAfterExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	gw := &fakeGateway{verifyStatus: "success", verifyAmount: 450000}
	svc, _ := newTestService(t, clk, gw)
	userID := snowflake.ID(42)

	_, err := svc.CompleteUpgrade(context.Background(), userID, "BF-FAKEREF")
	require.NoError(t, err)

	clk.Advance(31 * 24 * time.Hour)

	tier, err := svc.CurrentTier(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, tier)
}

func TestCompleteUpgradeRejectsUnsettledPayment(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk, &fakeGateway{verifyStatus: "failed"})

	_, err := svc.CompleteUpgrade(context.Background(), snowflake.ID(42), "BF-FAKEREF")
	require.ErrorIs(t, err, domain.ErrPaymentNotSettled)
}

func TestCompleteUpgradeRejectsUnderpayment(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, clk, &fakeGateway{verifyStatus: "success", verifyAmount: 100000})

	_, err := svc.CompleteUpgrade(context.Background(), snowflake.ID(42), "BF-FAKEREF")
	require.ErrorIs(t, err, domain.ErrAmountMismatch)
}
