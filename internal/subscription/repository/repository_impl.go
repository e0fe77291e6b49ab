package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindByUserID(ctx context.Context, userID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repo) Upsert(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tier", "paystack_reference", "amount_paid", "activated_at", "expires_at", "updated_at",
			}),
		}).
		Create(sub).Error
}

// MonthlyUsage counts records created in the month window. The invoice
// and expense tables are owned by their own features; only the counts
// are read here.
func (r *repo) MonthlyUsage(ctx context.Context, userID snowflake.ID, monthStart, monthEnd time.Time) (int64, int64, error) {
	var invoices int64
	if err := r.db.WithContext(ctx).
		Table("invoices").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, monthStart, monthEnd).
		Count(&invoices).Error; err != nil {
		return 0, 0, err
	}

	var expenses int64
	if err := r.db.WithContext(ctx).
		Table("expenses").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, monthStart, monthEnd).
		Count(&expenses).Error; err != nil {
		return 0, 0, err
	}

	return invoices, expenses, nil
}
