package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, userID, id snowflake.ID) (*Payment, error)
	FindByReference(ctx context.Context, userID snowflake.ID, reference string) (*Payment, error)
	FindAll(ctx context.Context, userID snowflake.ID) ([]Payment, error)
	FindByInvoice(ctx context.Context, userID, invoiceID snowflake.ID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, userID, id snowflake.ID) error
}
