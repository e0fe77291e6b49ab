package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/expense/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repo) FindByID(ctx context.Context, userID, id snowflake.ID) (*domain.Expense, error) {
	var expense domain.Expense
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repo) FindAll(ctx context.Context, userID snowflake.ID) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id desc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repo) Save(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *repo) Delete(ctx context.Context, userID, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Expense{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func (r *repo) DeleteMany(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&domain.Expense{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
