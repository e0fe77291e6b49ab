package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/pkg/query"
)

type CreateExpenseRequest struct {
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	Category      Category      `json:"category"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Vendor        string        `json:"vendor"`
	Date          time.Time     `json:"date"`
	HasReceipt    bool          `json:"has_receipt"`
	ReceiptURL    string        `json:"receipt_url"`
	Notes         string        `json:"notes"`
}

type UpdateExpenseRequest struct {
	Description   *string        `json:"description"`
	Amount        *float64       `json:"amount"`
	Category      *Category      `json:"category"`
	PaymentMethod *PaymentMethod `json:"payment_method"`
	Vendor        *string        `json:"vendor"`
	Date          *time.Time     `json:"date"`
	HasReceipt    *bool          `json:"has_receipt"`
	ReceiptURL    *string        `json:"receipt_url"`
	Notes         *string        `json:"notes"`
}

// ListExpenseRequest carries the dashboard filter controls.
type ListExpenseRequest struct {
	Category   string
	Method     string
	Search     string
	HasReceipt *bool
	DateFrom   *time.Time
	DateTo     *time.Time
	MinAmount  *float64
	MaxAmount  *float64
	SortBy     string
	SortDir    string
}

// ExpenseStats summarizes spending for the current month.
type ExpenseStats struct {
	MonthTotal     float64                `json:"month_total"`
	PrevMonthTotal float64                `json:"prev_month_total"`
	PercentChange  float64                `json:"percent_change"`
	MonthCount     int64                  `json:"month_count"`
	TopCategory    string                 `json:"top_category,omitempty"`
	ByCategory     []query.BreakdownEntry `json:"by_category"`
}

type Service interface {
	Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, req ListExpenseRequest) ([]Expense, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, id snowflake.ID) error
	BulkDelete(ctx context.Context, ids []snowflake.ID) (int64, error)
	Stats(ctx context.Context) (*ExpenseStats, error)
	// ExportCSV renders the filtered expense list as CSV.
	ExportCSV(ctx context.Context, req ListExpenseRequest) ([]byte, error)
}
