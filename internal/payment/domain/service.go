package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/pkg/query"
)

type CreatePaymentRequest struct {
	InvoiceID   *snowflake.ID `json:"invoice_id"`
	ClientName  string        `json:"client_name"`
	Email       string        `json:"email"`
	Amount      float64       `json:"amount"`
	Method      Method        `json:"method"`
	CreditTerms int           `json:"credit_terms"`
	Date        time.Time     `json:"date"`
	Notes       string        `json:"notes"`
}

// PaymentIntent is the result of creating a payment. The checkout URL
// is set only for Paystack payments awaiting authorization.
type PaymentIntent struct {
	Payment          *Payment `json:"payment"`
	AuthorizationURL string   `json:"authorization_url,omitempty"`
}

// ListPaymentRequest carries the dashboard filter controls.
type ListPaymentRequest struct {
	Status    string
	Method    string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	MinAmount *float64
	MaxAmount *float64
	SortBy    string
	SortDir   string
}

// PaymentStats summarizes received payments. Failed payments never
// count toward revenue.
type PaymentStats struct {
	MonthRevenue     float64                `json:"month_revenue"`
	PrevMonthRevenue float64                `json:"prev_month_revenue"`
	PercentChange    float64                `json:"percent_change"`
	PendingAmount    float64                `json:"pending_amount"`
	PendingCount     int64                  `json:"pending_count"`
	FailedCount      int64                  `json:"failed_count"`
	ByMethod         []query.BreakdownEntry `json:"by_method"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*PaymentIntent, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, req ListPaymentRequest) ([]Payment, error)
	// ListForInvoice returns an invoice's payments in settlement order.
	ListForInvoice(ctx context.Context, invoiceID snowflake.ID) ([]Payment, error)
	// RecordForInvoice stores a settled installment against an invoice.
	// The caller credits the invoice; this only keeps the record.
	RecordForInvoice(ctx context.Context, invoiceID snowflake.ID, clientName string, amount float64, method Method) (*Payment, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context) (*PaymentStats, error)
	// VerifyPaystack settles a pending Paystack payment by reference.
	VerifyPaystack(ctx context.Context, reference string) (*Payment, error)
}
