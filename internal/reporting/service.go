// Package reporting assembles cross-feature analytics for the
// reports dashboard.
package reporting

import (
	"context"
	"time"

	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/pkg/query"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Overview holds the headline figures for the current month.
type Overview struct {
	MonthRevenue        float64 `json:"month_revenue"`
	RevenueChange       float64 `json:"revenue_change"`
	MonthExpenses       float64 `json:"month_expenses"`
	ExpenseChange       float64 `json:"expense_change"`
	NetProfit           float64 `json:"net_profit"`
	OutstandingInvoices float64 `json:"outstanding_invoices"`
	OutstandingCount    int64   `json:"outstanding_count"`
}

// TrendPoint is one month in the revenue versus expense series.
type TrendPoint struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// ClientRevenue ranks a client by settled invoice value.
type ClientRevenue struct {
	ClientName string  `json:"client_name"`
	Total      float64 `json:"total"`
	Invoices   int64   `json:"invoices"`
}

// AgingBucketReport is one slice of the receivables aging report.
type AgingBucketReport struct {
	Label  string  `json:"label"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	Trend(ctx context.Context) ([]TrendPoint, error)
	ExpenseBreakdown(ctx context.Context) ([]query.BreakdownEntry, error)
	PaymentMethodAnalysis(ctx context.Context) ([]query.BreakdownEntry, error)
	TopClients(ctx context.Context) ([]ClientRevenue, error)
	InvoiceAging(ctx context.Context) ([]AgingBucketReport, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Holder   *config.ReportingConfigHolder
	Invoices invoicedomain.Service
	Expenses expensedomain.Service
	Payments paymentdomain.Service
}

type service struct {
	log      *zap.Logger
	clock    clock.Clock
	holder   *config.ReportingConfigHolder
	invoices invoicedomain.Service
	expenses expensedomain.Service
	payments paymentdomain.Service
}

func New(p Params) Service {
	return &service{
		log:      p.Log.Named("reporting.service"),
		clock:    p.Clock,
		holder:   p.Holder,
		invoices: p.Invoices,
		expenses: p.Expenses,
		payments: p.Payments,
	}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	paymentStats, err := s.payments.Stats(ctx)
	if err != nil {
		return nil, err
	}
	expenseStats, err := s.expenses.Stats(ctx)
	if err != nil {
		return nil, err
	}
	invoiceStats, err := s.invoices.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		MonthRevenue:        paymentStats.MonthRevenue,
		RevenueChange:       paymentStats.PercentChange,
		MonthExpenses:       expenseStats.MonthTotal,
		ExpenseChange:       expenseStats.PercentChange,
		NetProfit:           paymentStats.MonthRevenue - expenseStats.MonthTotal,
		OutstandingInvoices: invoiceStats.PendingValue + invoiceStats.OverdueValue,
		OutstandingCount:    invoiceStats.SentCount + invoiceStats.OverdueCount,
	}, nil
}

func (s *service) Trend(ctx context.Context) ([]TrendPoint, error) {
	payments, err := s.payments.List(ctx, paymentdomain.ListPaymentRequest{Status: string(paymentdomain.StatusCompleted)})
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, expensedomain.ListExpenseRequest{})
	if err != nil {
		return nil, err
	}

	months := s.holder.Get().MonthsOfTrend
	now := s.clock.Now()

	points := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		anchor := now.AddDate(0, -i, 0)

		var revenue float64
		for _, p := range payments {
			if query.SameMonth(p.Date, anchor) {
				revenue += p.Amount
			}
		}
		var spent float64
		for _, e := range expenses {
			if query.SameMonth(e.Date, anchor) {
				spent += e.Amount
			}
		}

		points = append(points, TrendPoint{
			Month:    anchor.Format("Jan 2006"),
			Revenue:  revenue,
			Expenses: spent,
			Profit:   revenue - spent,
		})
	}
	return points, nil
}

func (s *service) ExpenseBreakdown(ctx context.Context) ([]query.BreakdownEntry, error) {
	stats, err := s.expenses.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByCategory, nil
}

func (s *service) PaymentMethodAnalysis(ctx context.Context) ([]query.BreakdownEntry, error) {
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByMethod, nil
}

func (s *service) TopClients(ctx context.Context) ([]ClientRevenue, error) {
	views, err := s.invoices.List(ctx, invoicedomain.ListInvoiceRequest{Status: string(invoicedomain.InvoiceStatusPaid)})
	if err != nil {
		return nil, err
	}

	entries := query.SortBySum(query.BreakdownBy(views,
		func(v invoicedomain.InvoiceView) string { return v.ClientName },
		func(v invoicedomain.InvoiceView) float64 { return v.Total },
	))

	limit := s.holder.Get().TopClientLimit
	if len(entries) > limit {
		entries = entries[:limit]
	}

	clients := make([]ClientRevenue, 0, len(entries))
	for _, entry := range entries {
		clients = append(clients, ClientRevenue{
			ClientName: entry.Key,
			Total:      entry.Sum,
			Invoices:   entry.Count,
		})
	}
	return clients, nil
}

func (s *service) InvoiceAging(ctx context.Context) ([]AgingBucketReport, error) {
	views, err := s.invoices.List(ctx, invoicedomain.ListInvoiceRequest{Status: invoicedomain.StatusOverdue})
	if err != nil {
		return nil, err
	}

	now := query.DateOnly(s.clock.Now())
	buckets := s.holder.Get().AgingBuckets

	report := make([]AgingBucketReport, len(buckets))
	for i, bucket := range buckets {
		report[i].Label = bucket.Label
	}
	for _, v := range views {
		days := int(now.Sub(query.DateOnly(v.DueDate)) / (24 * time.Hour))
		for i, bucket := range buckets {
			if days < bucket.MinDays {
				continue
			}
			if bucket.MaxDays != nil && days > *bucket.MaxDays {
				continue
			}
			report[i].Count++
			report[i].Amount += v.AmountDue()
			break
		}
	}
	return report, nil
}
