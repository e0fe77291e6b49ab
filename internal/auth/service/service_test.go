package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	"github.com/smallbiznis/bizflow/internal/auth/repository"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, clk clock.Clock) authdomain.Service {
	t.Helper()

	dbConn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(zap.NewNop(), repo, sessionRepo, node, clk)
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := newTestService(t, clock.NewSystemClock())

	user, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:        "Alice@Example.com",
		Password:     "correct-password",
		BusinessName: "Acme Traders Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "acme-traders-ltd", user.BusinessSlug)
	require.NotNil(t, user.PasswordHash)
	require.True(t, strings.HasPrefix(*user.PasswordHash, "$argon2id$v=19$"))

	res, err := svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.RawToken)
	require.Equal(t, user.ID, res.User.ID)

	session, err := svc.Authenticate(context.Background(), res.RawToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t, clock.NewSystemClock())

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "bob@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "bob@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestService(t, clock.NewSystemClock())

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "carol@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "carol@example.com",
		Password: "another-password",
	})
	require.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, clk)

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "dave@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	res, err := svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "dave@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	clk.Advance(8 * 24 * time.Hour)

	_, err = svc.Authenticate(context.Background(), res.RawToken)
	require.ErrorIs(t, err, authdomain.ErrSessionExpired)
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := newTestService(t, clock.NewSystemClock())

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "erin@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	res, err := svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "erin@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), res.RawToken))

	_, err = svc.Authenticate(context.Background(), res.RawToken)
	require.ErrorIs(t, err, authdomain.ErrSessionRevoked)
}
