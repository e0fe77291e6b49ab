package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smallbiznis/bizflow/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), config.Config{
		PaystackSecretKey: "sk_test_abc",
		PaystackBaseURL:   srv.URL,
	})
}

func TestToKobo(t *testing.T) {
	require.Equal(t, int64(450000), ToKobo(4500))
	require.Equal(t, int64(1550), ToKobo(15.50))
	require.Equal(t, int64(0), ToKobo(0))
}

func TestInitializeConvertsAmountToKobo(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         got["reference"],
			},
		})
	}))

	res, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "owner@example.com",
		AmountNaira: 4500,
	})
	require.NoError(t, err)
	require.Equal(t, float64(450000), got["amount"])
	require.Equal(t, "NGN", got["currency"])
	require.True(t, strings.HasPrefix(res.Reference, "BF-"))
	require.NotEmpty(t, res.AuthorizationURL)
}

func TestVerifySuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/BF-REF1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"reference": "BF-REF1",
				"status":    "success",
				"amount":    450000,
				"currency":  "NGN",
				"channel":   "card",
			},
		})
	}))

	res, err := client.Verify(context.Background(), "BF-REF1")
	require.NoError(t, err)
	require.Equal(t, "success", res.Status)
	require.Equal(t, int64(450000), res.AmountKobo)
}

func TestVerifyDeclined(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))

	_, err := client.Verify(context.Background(), "BF-MISSING")
	require.ErrorIs(t, err, ErrDeclined)
}

func TestGatewayServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Verify(context.Background(), "BF-REF2")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNotConfigured(t *testing.T) {
	client := New(zap.NewNop(), config.Config{})

	_, err := client.Verify(context.Background(), "BF-REF3")
	require.ErrorIs(t, err, ErrNotConfigured)
}
