// Package migration creates the schema on startup so a fresh install
// works out of the box for local and self-hosted environments.
package migration

import (
	"errors"

	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	clientdomain "github.com/smallbiznis/bizflow/internal/client/domain"
	"github.com/smallbiznis/bizflow/internal/config"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/internal/seed"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := AutoMigrate(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoAccount(conn)
		}
		return nil
	}),
)

// AutoMigrate creates or updates every table the application owns.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&subscriptiondomain.Subscription{},
		&clientdomain.Client{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceActivity{},
		&expensedomain.Expense{},
		&paymentdomain.Payment{},
	)
}
