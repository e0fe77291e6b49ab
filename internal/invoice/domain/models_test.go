package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestComputeTotalsAppliesVATAndDiscount(t *testing.T) {
	inv := Invoice{
		TaxRate: DefaultTaxRate,
		LineItems: datatypes.NewJSONSlice([]LineItem{
			{Description: "Website design", Quantity: 1, UnitPrice: 180000},
			{Description: "Hosting setup", Quantity: 2, UnitPrice: 50000},
		}),
	}
	inv.ComputeTotals()

	require.Equal(t, float64(280000), inv.Subtotal)
	require.Equal(t, float64(21000), inv.TaxAmount)
	require.Equal(t, float64(301000), inv.Total)
	require.Equal(t, float64(100000), inv.LineItems[1].Amount)

	inv.Discount = 1000
	inv.ComputeTotals()
	require.Equal(t, float64(300000), inv.Total)
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	inv := Invoice{
		LineItems: datatypes.NewJSONSlice([]LineItem{
			{Description: "Consultation", Quantity: 1, UnitPrice: 100},
		}),
		Discount: 5000,
	}
	inv.ComputeTotals()
	require.Equal(t, float64(0), inv.Total)
}

func TestValidateRejectsDueBeforeIssue(t *testing.T) {
	inv := Invoice{
		ClientName: "Acme",
		IssueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		LineItems: datatypes.NewJSONSlice([]LineItem{
			{Description: "Work", Quantity: 1, UnitPrice: 100},
		}),
	}
	require.ErrorIs(t, inv.Validate(), ErrInvalidDueDate)

	// Same calendar day is allowed regardless of time of day.
	inv.DueDate = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	inv.IssueDate = time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	require.NoError(t, inv.Validate())
}

func TestValidateRejectsEmptyLineItems(t *testing.T) {
	inv := Invoice{ClientName: "Acme"}
	require.ErrorIs(t, inv.Validate(), ErrInvalidLineItems)

	inv.LineItems = datatypes.NewJSONSlice([]LineItem{
		{Description: "Work", Quantity: 0, UnitPrice: 100},
	})
	require.ErrorIs(t, inv.Validate(), ErrInvalidLineItems)
}

func TestDisplayStatusDerivation(t *testing.T) {
	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	sentPastDue := Invoice{Status: InvoiceStatusSent, DueDate: asOf.AddDate(0, 0, -1)}
	require.Equal(t, StatusOverdue, sentPastDue.DisplayStatus(asOf))

	// Due today is not overdue.
	sentDueToday := Invoice{Status: InvoiceStatusSent, DueDate: asOf.Add(-2 * time.Hour)}
	require.Equal(t, string(InvoiceStatusSent), sentDueToday.DisplayStatus(asOf))

	paidPastDue := Invoice{Status: InvoiceStatusPaid, DueDate: asOf.AddDate(0, 0, -30)}
	require.Equal(t, string(InvoiceStatusPaid), paidPastDue.DisplayStatus(asOf))

	draftPastDue := Invoice{Status: InvoiceStatusDraft, DueDate: asOf.AddDate(0, 0, -5)}
	require.Equal(t, string(InvoiceStatusDraft), draftPastDue.DisplayStatus(asOf))
}
