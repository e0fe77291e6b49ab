package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, expense *Expense) error
	FindByID(ctx context.Context, userID, id snowflake.ID) (*Expense, error)
	FindAll(ctx context.Context, userID snowflake.ID) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, userID, id snowflake.ID) error
	DeleteMany(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) (int64, error)
}
