package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, userID, id snowflake.ID) (*Invoice, error)
	FindAll(ctx context.Context, userID snowflake.ID) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, userID, id snowflake.ID) error
	Count(ctx context.Context, userID snowflake.ID) (int64, error)

	InsertActivity(ctx context.Context, activity *InvoiceActivity) error
	FindActivities(ctx context.Context, userID, invoiceID snowflake.ID) ([]InvoiceActivity, error)
}
