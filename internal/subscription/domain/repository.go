package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByUserID(ctx context.Context, userID snowflake.ID) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
	MonthlyUsage(ctx context.Context, userID snowflake.ID, monthStart, monthEnd time.Time) (invoices int64, expenses int64, err error)
}
