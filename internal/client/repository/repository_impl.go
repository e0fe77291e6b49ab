package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/client/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repo) FindByID(ctx context.Context, userID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repo) FindAll(ctx context.Context, userID snowflake.ID) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, client *domain.Client) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("user_id = ? AND id = ?", client.UserID, client.ID).
		Select("name", "email", "phone", "address", "updated_at").
		Updates(client)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, userID, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Client{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
