// Package seed loads a demo account with sample records so the
// dashboard has something to show on first run.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	"github.com/smallbiznis/bizflow/internal/auth/password"
	clientdomain "github.com/smallbiznis/bizflow/internal/client/domain"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@bizflow.ng"
	demoPassword = "demo1234"
	demoBusiness = "BizFlow Demo Company"
	demoSlug     = "bizflow-demo-company"
)

// EnsureDemoAccount seeds the demo user and sample records. It is a
// no-op when the demo user already exists.
func EnsureDemoAccount(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing authdomain.User
		err := tx.Where("email = ?", demoEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := password.Hash(demoPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user := authdomain.User{
			ID:           node.Generate(),
			Email:        demoEmail,
			PasswordHash: &hash,
			BusinessName: demoBusiness,
			BusinessSlug: demoSlug,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		clients := []clientdomain.Client{
			{ID: node.Generate(), UserID: user.ID, Name: "Adebayo Enterprises", Email: "accounts@adebayo.ng", Phone: "+234 803 111 2233", Address: "14 Broad Street, Lagos", CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate(), UserID: user.ID, Name: "Chinedu Tech Solutions", Email: "billing@chinedutech.ng", Phone: "+234 805 444 5566", Address: "3 Aba Road, Port Harcourt", CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate(), UserID: user.ID, Name: "Fatima Catering Services", Email: "hello@fatimacatering.ng", Phone: "+234 809 777 8899", Address: "22 Zaria Road, Kano", CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.Create(&clients).Error; err != nil {
			return err
		}

		sentAt := now.AddDate(0, 0, -20)
		invoices := []invoicedomain.Invoice{
			newDemoInvoice(node, user.ID, "INV-0001", &clients[0], now.AddDate(0, 0, -25), now.AddDate(0, 0, -10), []invoicedomain.LineItem{
				{Description: "Website Development", Quantity: 1, UnitPrice: 250000},
				{Description: "Hosting Setup", Quantity: 1, UnitPrice: 30000},
			}),
			newDemoInvoice(node, user.ID, "INV-0002", &clients[1], now.AddDate(0, 0, -12), now.AddDate(0, 0, 9), []invoicedomain.LineItem{
				{Description: "Brand Identity Design", Quantity: 1, UnitPrice: 120000},
			}),
		}
		for i := range invoices {
			invoices[i].Status = invoicedomain.InvoiceStatusSent
			invoices[i].SentAt = &sentAt
		}
		paidAt := now.AddDate(0, 0, -5)
		invoices[0].Status = invoicedomain.InvoiceStatusPaid
		invoices[0].PaidAt = &paidAt
		invoices[0].AmountPaid = invoices[0].Total
		if err := tx.Create(&invoices).Error; err != nil {
			return err
		}

		expenses := []expensedomain.Expense{
			{ID: node.Generate(), UserID: user.ID, Description: "Office Rent - December", Amount: 250000, Category: expensedomain.CategoryRent, PaymentMethod: expensedomain.MethodBankTransfer, Vendor: "Lekki Properties Ltd", Date: now.AddDate(0, 0, -14), CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate(), UserID: user.ID, Description: "Internet & Phone Bills", Amount: 28000, Category: expensedomain.CategoryCommunication, PaymentMethod: expensedomain.MethodCard, Vendor: "MTN Business", Date: now.AddDate(0, 0, -7), CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate(), UserID: user.ID, Description: "Generator Fuel", Amount: 42000, Category: expensedomain.CategoryFuel, PaymentMethod: expensedomain.MethodCash, Vendor: "Forte Oil", Date: now.AddDate(0, 0, -3), CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.Create(&expenses).Error; err != nil {
			return err
		}

		payments := []paymentdomain.Payment{
			{ID: node.Generate(), UserID: user.ID, InvoiceID: &invoices[0].ID, ClientName: clients[0].Name, Amount: invoices[0].Total, Method: paymentdomain.MethodBankTransfer, Status: paymentdomain.StatusCompleted, Reference: "DEMO-TRF-0001", Date: paidAt, CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate(), UserID: user.ID, ClientName: clients[2].Name, Amount: 65000, Method: paymentdomain.MethodCash, Status: paymentdomain.StatusCompleted, Reference: "DEMO-CSH-0002", Date: now.AddDate(0, 0, -2), CreatedAt: now, UpdatedAt: now},
		}
		return tx.Create(&payments).Error
	})
}

func newDemoInvoice(node *snowflake.Node, userID snowflake.ID, number string, client *clientdomain.Client, issued, due time.Time, items []invoicedomain.LineItem) invoicedomain.Invoice {
	inv := invoicedomain.Invoice{
		ID:            node.Generate(),
		UserID:        userID,
		InvoiceNumber: number,
		ClientID:      &client.ID,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		IssueDate:     issued,
		DueDate:       due,
		LineItems:     datatypes.NewJSONSlice(items),
		TaxRate:       invoicedomain.DefaultTaxRate,
		Status:        invoicedomain.InvoiceStatusDraft,
		CreatedAt:     issued,
		UpdatedAt:     issued,
	}
	inv.ComputeTotals()
	return inv
}
