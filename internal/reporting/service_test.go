package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoices struct {
	stats      invoicedomain.InvoiceStats
	views      []invoicedomain.InvoiceView
	lastStatus string
}

func (f *fakeInvoices) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) GetByID(ctx context.Context, id snowflake.ID) (*invoicedomain.InvoiceView, error) {
	return nil, nil
}

func (f *fakeInvoices) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) ([]invoicedomain.InvoiceView, error) {
	f.lastStatus = req.Status
	out := make([]invoicedomain.InvoiceView, 0, len(f.views))
	for _, v := range f.views {
		if req.Status != "" && v.DisplayStatus != req.Status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeInvoices) Update(ctx context.Context, id snowflake.ID, req invoicedomain.UpdateInvoiceRequest) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) Delete(ctx context.Context, id snowflake.ID) error { return nil }

func (f *fakeInvoices) Send(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) MarkPaid(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) ApplyPayment(ctx context.Context, id snowflake.ID, amount float64) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) Duplicate(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) Stats(ctx context.Context) (*invoicedomain.InvoiceStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeInvoices) RenderPDF(ctx context.Context, id snowflake.ID) ([]byte, error) {
	return nil, nil
}

func (f *fakeInvoices) Activities(ctx context.Context, id snowflake.ID) ([]invoicedomain.InvoiceActivity, error) {
	return nil, nil
}

type fakeExpenses struct {
	stats    expensedomain.ExpenseStats
	expenses []expensedomain.Expense
}

func (f *fakeExpenses) Create(ctx context.Context, req expensedomain.CreateExpenseRequest) (*expensedomain.Expense, error) {
	return nil, nil
}

func (f *fakeExpenses) GetByID(ctx context.Context, id snowflake.ID) (*expensedomain.Expense, error) {
	return nil, nil
}

func (f *fakeExpenses) List(ctx context.Context, req expensedomain.ListExpenseRequest) ([]expensedomain.Expense, error) {
	return f.expenses, nil
}

func (f *fakeExpenses) Update(ctx context.Context, id snowflake.ID, req expensedomain.UpdateExpenseRequest) (*expensedomain.Expense, error) {
	return nil, nil
}

func (f *fakeExpenses) Delete(ctx context.Context, id snowflake.ID) error { return nil }

func (f *fakeExpenses) BulkDelete(ctx context.Context, ids []snowflake.ID) (int64, error) {
	return 0, nil
}

func (f *fakeExpenses) Stats(ctx context.Context) (*expensedomain.ExpenseStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeExpenses) ExportCSV(ctx context.Context, req expensedomain.ListExpenseRequest) ([]byte, error) {
	return nil, nil
}

type fakePayments struct {
	stats    paymentdomain.PaymentStats
	payments []paymentdomain.Payment
}

func (f *fakePayments) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (*paymentdomain.PaymentIntent, error) {
	return nil, nil
}

func (f *fakePayments) GetByID(ctx context.Context, id snowflake.ID) (*paymentdomain.Payment, error) {
	return nil, nil
}

func (f *fakePayments) List(ctx context.Context, req paymentdomain.ListPaymentRequest) ([]paymentdomain.Payment, error) {
	return f.payments, nil
}

func (f *fakePayments) ListForInvoice(ctx context.Context, invoiceID snowflake.ID) ([]paymentdomain.Payment, error) {
	return nil, nil
}

func (f *fakePayments) RecordForInvoice(ctx context.Context, invoiceID snowflake.ID, clientName string, amount float64, method paymentdomain.Method) (*paymentdomain.Payment, error) {
	return nil, nil
}

func (f *fakePayments) Delete(ctx context.Context, id snowflake.ID) error { return nil }

func (f *fakePayments) Stats(ctx context.Context) (*paymentdomain.PaymentStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakePayments) VerifyPaystack(ctx context.Context, reference string) (*paymentdomain.Payment, error) {
	return nil, nil
}

func setupService(t *testing.T, clk clock.Clock, invoices *fakeInvoices, expenses *fakeExpenses, payments *fakePayments) Service {
	t.Helper()

	holder, err := config.NewReportingConfigHolder()
	require.NoError(t, err)

	return New(Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Holder:   holder,
		Invoices: invoices,
		Expenses: expenses,
		Payments: payments,
	})
}

func TestOverviewComposesFeatureStats(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	svc := setupService(t, clk,
		&fakeInvoices{stats: invoicedomain.InvoiceStats{
			PendingValue: 80000,
			OverdueValue: 20000,
			SentCount:    2,
			OverdueCount: 1,
		}},
		&fakeExpenses{stats: expensedomain.ExpenseStats{MonthTotal: 200000, PercentChange: -10}},
		&fakePayments{stats: paymentdomain.PaymentStats{MonthRevenue: 500000, PercentChange: 25}},
	)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(500000), overview.MonthRevenue)
	require.Equal(t, float64(25), overview.RevenueChange)
	require.Equal(t, float64(200000), overview.MonthExpenses)
	require.Equal(t, float64(-10), overview.ExpenseChange)
	require.Equal(t, float64(300000), overview.NetProfit)
	require.Equal(t, float64(100000), overview.OutstandingInvoices)
	require.Equal(t, int64(3), overview.OutstandingCount)
}

func TestTrendGroupsByCalendarMonth(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	payments := &fakePayments{payments: []paymentdomain.Payment{
		{Amount: 150000, Date: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)},
		{Amount: 100000, Date: time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)},
	}}
	expenses := &fakeExpenses{expenses: []expensedomain.Expense{
		{Amount: 40000, Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)},
	}}
	svc := setupService(t, clk, &fakeInvoices{}, expenses, payments)

	points, err := svc.Trend(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 6)

	require.Equal(t, "Oct 2024", points[0].Month)
	require.Equal(t, "Mar 2025", points[5].Month)
	require.Equal(t, float64(150000), points[5].Revenue)
	require.Equal(t, float64(40000), points[5].Expenses)
	require.Equal(t, float64(110000), points[5].Profit)
	require.Equal(t, float64(100000), points[4].Revenue)
	require.Zero(t, points[0].Revenue)
}

func TestTopClientsRankedAndLimited(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	invoices := &fakeInvoices{}
	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta"}
	for i, name := range names {
		invoices.views = append(invoices.views, invoicedomain.InvoiceView{
			Invoice:       invoicedomain.Invoice{ClientName: name, Total: float64((i + 1) * 10000)},
			DisplayStatus: string(invoicedomain.InvoiceStatusPaid),
		})
	}
	// A repeat customer should aggregate under one entry.
	invoices.views = append(invoices.views, invoicedomain.InvoiceView{
		Invoice:       invoicedomain.Invoice{ClientName: "Alpha", Total: 90000},
		DisplayStatus: string(invoicedomain.InvoiceStatusPaid),
	})
	svc := setupService(t, clk, invoices, &fakeExpenses{}, &fakePayments{})

	clients, err := svc.TopClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 5)
	require.Equal(t, string(invoicedomain.InvoiceStatusPaid), invoices.lastStatus)

	require.Equal(t, "Alpha", clients[0].ClientName)
	require.Equal(t, float64(100000), clients[0].Total)
	require.Equal(t, int64(2), clients[0].Invoices)
	require.Equal(t, "Zeta", clients[1].ClientName)
}

func TestInvoiceAgingBuckets(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)

	overdue := func(daysPastDue int, total, paid float64) invoicedomain.InvoiceView {
		return invoicedomain.InvoiceView{
			Invoice: invoicedomain.Invoice{
				DueDate:    now.AddDate(0, 0, -daysPastDue),
				Total:      total,
				AmountPaid: paid,
			},
			DisplayStatus: invoicedomain.StatusOverdue,
		}
	}
	invoices := &fakeInvoices{views: []invoicedomain.InvoiceView{
		overdue(10, 50000, 0),
		overdue(25, 30000, 10000),
		overdue(45, 80000, 0),
		overdue(100, 120000, 0),
	}}
	svc := setupService(t, clk, invoices, &fakeExpenses{}, &fakePayments{})

	report, err := svc.InvoiceAging(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 3)

	require.Equal(t, "0-30", report[0].Label)
	require.Equal(t, int64(2), report[0].Count)
	require.Equal(t, float64(70000), report[0].Amount)

	require.Equal(t, "31-60", report[1].Label)
	require.Equal(t, int64(1), report[1].Count)
	require.Equal(t, float64(80000), report[1].Amount)

	require.Equal(t, "60+", report[2].Label)
	require.Equal(t, int64(1), report[2].Count)
	require.Equal(t, float64(120000), report[2].Amount)
}
