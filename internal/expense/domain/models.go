// Package domain contains persistence models and invariants for
// expense tracking.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Category classifies an expense. The set matches the dashboard's
// fixed category list.
type Category string

const (
	CategoryTransport            Category = "transport"
	CategoryUtilities            Category = "utilities"
	CategoryInventory            Category = "inventory"
	CategoryMarketing            Category = "marketing"
	CategoryProfessionalServices Category = "professional-services"
	CategoryOfficeSupplies       Category = "office-supplies"
	CategoryMeals                Category = "meals"
	CategoryFuel                 Category = "fuel"
	CategoryRent                 Category = "rent"
	CategoryInsurance            Category = "insurance"
	CategoryMaintenance          Category = "maintenance"
	CategoryCommunication        Category = "communication"
	CategoryOther                Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryTransport,
	CategoryUtilities,
	CategoryInventory,
	CategoryMarketing,
	CategoryProfessionalServices,
	CategoryOfficeSupplies,
	CategoryMeals,
	CategoryFuel,
	CategoryRent,
	CategoryInsurance,
	CategoryMaintenance,
	CategoryCommunication,
	CategoryOther,
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PaymentMethod is how an expense was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank-transfer"
	MethodMobileMoney  PaymentMethod = "mobile-money"
	MethodCard         PaymentMethod = "card"
)

// ValidPaymentMethod reports whether the value is a known method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCard:
		return true
	}
	return false
}

// Expense represents a business cost entry. Amounts are naira.
type Expense struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID      `gorm:"column:user_id;not null;index" json:"-"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	Amount        float64           `gorm:"not null" json:"amount"`
	Category      Category          `gorm:"type:text;not null;index" json:"category"`
	PaymentMethod PaymentMethod     `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	Vendor        string            `gorm:"type:text" json:"vendor,omitempty"`
	Date          time.Time         `gorm:"not null;index" json:"date"`
	HasReceipt    bool              `gorm:"column:has_receipt;not null;default:false" json:"has_receipt"`
	ReceiptURL    string            `gorm:"column:receipt_url;type:text" json:"receipt_url,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Expense) TableName() string { return "expenses" }

// Validate checks invariants before persisting. A receipt flag without
// a URL, or the reverse, is rejected.
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrInvalidDescription
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if !ValidPaymentMethod(e.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.HasReceipt != (strings.TrimSpace(e.ReceiptURL) != "") {
		return ErrReceiptMismatch
	}
	return nil
}
