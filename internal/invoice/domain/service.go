package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateInvoiceRequest struct {
	ClientID    *snowflake.ID `json:"client_id"`
	ClientName  string        `json:"client_name"`
	ClientEmail string        `json:"client_email"`
	IssueDate   time.Time     `json:"issue_date"`
	DueDate     time.Time     `json:"due_date"`
	LineItems   []LineItem    `json:"line_items"`
	TaxRate     *float64      `json:"tax_rate"`
	Discount    float64       `json:"discount"`
	Notes       string        `json:"notes"`
}

type UpdateInvoiceRequest struct {
	ClientID    *snowflake.ID `json:"client_id"`
	ClientName  *string       `json:"client_name"`
	ClientEmail *string       `json:"client_email"`
	IssueDate   *time.Time    `json:"issue_date"`
	DueDate     *time.Time    `json:"due_date"`
	LineItems   []LineItem    `json:"line_items"`
	TaxRate     *float64      `json:"tax_rate"`
	Discount    *float64      `json:"discount"`
	Notes       *string       `json:"notes"`
}

// ListInvoiceRequest carries the dashboard filter controls. Overdue is
// accepted as a status value even though it is derived.
type ListInvoiceRequest struct {
	Status    string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	MinAmount *float64
	MaxAmount *float64
	SortBy    string
	SortDir   string
}

// InvoiceStats summarizes the invoice book as of a point in time.
type InvoiceStats struct {
	TotalCount   int64   `json:"total_count"`
	TotalValue   float64 `json:"total_value"`
	PaidValue    float64 `json:"paid_value"`
	PendingValue float64 `json:"pending_value"`
	OverdueValue float64 `json:"overdue_value"`
	DraftCount   int64   `json:"draft_count"`
	SentCount    int64   `json:"sent_count"`
	PaidCount    int64   `json:"paid_count"`
	OverdueCount int64   `json:"overdue_count"`
}

// InvoiceView is an invoice with its derived display status attached.
type InvoiceView struct {
	Invoice
	DisplayStatus string `json:"display_status"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*InvoiceView, error)
	List(ctx context.Context, req ListInvoiceRequest) ([]InvoiceView, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateInvoiceRequest) (*Invoice, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Send(ctx context.Context, id snowflake.ID) (*Invoice, error)
	MarkPaid(ctx context.Context, id snowflake.ID) (*Invoice, error)
	// ApplyPayment credits an amount against the invoice and marks it
	// paid once the total is covered.
	ApplyPayment(ctx context.Context, id snowflake.ID, amount float64) (*Invoice, error)
	Duplicate(ctx context.Context, id snowflake.ID) (*Invoice, error)
	Stats(ctx context.Context) (*InvoiceStats, error)
	RenderPDF(ctx context.Context, id snowflake.ID) ([]byte, error)
	Activities(ctx context.Context, id snowflake.ID) ([]InvoiceActivity, error)
}

// Renderer produces a printable document for an invoice.
type Renderer interface {
	RenderInvoice(ctx context.Context, invoice Invoice, businessName string) ([]byte, error)
}
