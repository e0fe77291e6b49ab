package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bizflow/internal/auth/repository"
	authservice "github.com/smallbiznis/bizflow/internal/auth/service"
	"github.com/smallbiznis/bizflow/internal/auth/session"
	clientrepository "github.com/smallbiznis/bizflow/internal/client/repository"
	clientservice "github.com/smallbiznis/bizflow/internal/client/service"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	expenserepository "github.com/smallbiznis/bizflow/internal/expense/repository"
	expenseservice "github.com/smallbiznis/bizflow/internal/expense/service"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/bizflow/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/bizflow/internal/invoice/service"
	"github.com/smallbiznis/bizflow/internal/migration"
	"github.com/smallbiznis/bizflow/internal/observability"
	obsmetrics "github.com/smallbiznis/bizflow/internal/observability/metrics"
	paymentrepository "github.com/smallbiznis/bizflow/internal/payment/repository"
	paymentservice "github.com/smallbiznis/bizflow/internal/payment/service"
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/ratelimit"
	"github.com/smallbiznis/bizflow/internal/reporting"
	subscriptionrepository "github.com/smallbiznis/bizflow/internal/subscription/repository"
	subscriptionservice "github.com/smallbiznis/bizflow/internal/subscription/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGateway struct {
	verifyResult *paystack.VerifyResult
	verifyErr    error
}

func (g *stubGateway) Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.test/" + req.Reference,
		AccessCode:       "access_test",
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult != nil {
		return g.verifyResult, nil
	}
	return &paystack.VerifyResult{Reference: reference, Status: "success"}, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderInvoice(ctx context.Context, invoice invoicedomain.Invoice, businessName string) ([]byte, error) {
	return []byte("%PDF-1.4 " + businessName + " " + invoice.InvoiceNumber), nil
}

type testServer struct {
	srv     *Server
	db      *gorm.DB
	clock   *clock.FakeClock
	gateway *stubGateway
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{
		AppName:           "bizflow",
		Environment:       "test",
		HTTPAddr:          ":0",
		PremiumPlanAmount: 4500,
		Currency:          "NGN",
	}
	gateway := &stubGateway{}

	userRepo, sessionRepo := repository.New(db)
	authSvc := authservice.New(log, userRepo, sessionRepo, node, clk)

	subscriptionSvc := subscriptionservice.New(log, subscriptionrepository.New(db), gateway, node, clk, cfg)

	clientSvc := clientservice.New(clientservice.Params{
		Log:   log,
		GenID: node,
		Repo:  clientrepository.New(db),
		Clock: clk,
	})

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		Log:      log,
		GenID:    node,
		Repo:     invoicerepository.New(db),
		Clock:    clk,
		Quota:    subscriptionSvc,
		Accounts: authSvc,
		Renderer: stubRenderer{},
	})

	expenseSvc := expenseservice.New(expenseservice.Params{
		Log:   log,
		GenID: node,
		Repo:  expenserepository.New(db),
		Clock: clk,
		Quota: subscriptionSvc,
	})

	paymentSvc := paymentservice.New(paymentservice.Params{
		Log:      log,
		GenID:    node,
		Repo:     paymentrepository.New(db),
		Clock:    clk,
		Gateway:  gateway,
		Invoices: invoiceSvc,
	})

	holder, err := config.NewReportingConfigHolder()
	require.NoError(t, err)
	reportingSvc := reporting.New(reporting.Params{
		Log:      log,
		Clock:    clk,
		Holder:   holder,
		Invoices: invoiceSvc,
		Expenses: expenseSvc,
		Payments: paymentSvc,
	})

	metrics, err := obsmetrics.NewHTTPMetrics()
	require.NoError(t, err)
	engine := NewEngine(observability.Config{LogLevel: "error", Environment: "test"}, metrics)

	srv := NewServer(ServerParams{
		Gin:             engine,
		Log:             log,
		Cfg:             cfg,
		DB:              db,
		Clock:           clk,
		GenID:           node,
		Sessions:        session.NewManager(cfg),
		AuthLimiter:     ratelimit.NewAuthLimiter(cfg),
		AuthSvc:         authSvc,
		ClientSvc:       clientSvc,
		InvoiceSvc:      invoiceSvc,
		ExpenseSvc:      expenseSvc,
		PaymentSvc:      paymentSvc,
		SubscriptionSvc: subscriptionSvc,
		ReportingSvc:    reportingSvc,
	})
	registerRoutes(srv)

	return &testServer{srv: srv, db: db, clock: clk, gateway: gateway}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range ts.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		ts.cookies = set
	}
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
