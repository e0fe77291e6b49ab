package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, userID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindAll(ctx context.Context, userID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Save(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *repo) Delete(ctx context.Context, userID, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Invoice{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *repo) Count(ctx context.Context, userID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertActivity(ctx context.Context, activity *domain.InvoiceActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repo) FindActivities(ctx context.Context, userID, invoiceID snowflake.ID) ([]domain.InvoiceActivity, error) {
	var activities []domain.InvoiceActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Order("created_at desc, id desc").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
