package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, userID, id snowflake.ID) (*Client, error)
	FindAll(ctx context.Context, userID snowflake.ID) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, userID, id snowflake.ID) error
}
