package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrUnauthorized   = errors.New("unauthorized")
)

type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type ListClientRequest struct {
	Search string
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Client, error)
	List(ctx context.Context, req ListClientRequest) ([]Client, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
