package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizflow/internal/client/domain"
	"github.com/smallbiznis/bizflow/internal/client/repository"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/usercontext"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Client{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(dbConn),
		Clock: clock.NewSystemClock(),
	})
}

func authedCtx(userID snowflake.ID) context.Context {
	return usercontext.WithUserID(context.Background(), userID)
}

func TestCreateRequiresAuthenticatedUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Acme", Email: "acme@example.com"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListScopedToOwner(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(authedCtx(1), domain.CreateClientRequest{Name: "Acme Corp", Email: "billing@acme.example"})
	require.NoError(t, err)
	_, err = svc.Create(authedCtx(2), domain.CreateClientRequest{Name: "Other Co", Email: "other@example.com"})
	require.NoError(t, err)

	clients, err := svc.List(authedCtx(1), domain.ListClientRequest{})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, "Acme Corp", clients[0].Name)
}

func TestListSearchMatchesNameCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := authedCtx(1)

	for _, name := range []string{"Lagos Textiles", "Abuja Plastics", "Textile Hub"} {
		_, err := svc.Create(ctx, domain.CreateClientRequest{Name: name, Email: "x@example.com"})
		require.NoError(t, err)
	}

	clients, err := svc.List(ctx, domain.ListClientRequest{Search: "textile"})
	require.NoError(t, err)
	require.Len(t, clients, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := authedCtx(1)

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Acme", Email: "acme@example.com"})
	require.NoError(t, err)

	newPhone := "+2348012345678"
	updated, err := svc.Update(ctx, created.ID, domain.UpdateClientRequest{Phone: &newPhone})
	require.NoError(t, err)
	require.Equal(t, newPhone, updated.Phone)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrClientNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrClientNotFound)
}
