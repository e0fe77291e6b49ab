package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/bizflow/internal/auth"
	authdomain "github.com/smallbiznis/bizflow/internal/auth/domain"
	"github.com/smallbiznis/bizflow/internal/auth/session"
	"github.com/smallbiznis/bizflow/internal/client"
	clientdomain "github.com/smallbiznis/bizflow/internal/client/domain"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	"github.com/smallbiznis/bizflow/internal/expense"
	expensedomain "github.com/smallbiznis/bizflow/internal/expense/domain"
	"github.com/smallbiznis/bizflow/internal/invoice"
	invoicedomain "github.com/smallbiznis/bizflow/internal/invoice/domain"
	"github.com/smallbiznis/bizflow/internal/observability"
	obslogger "github.com/smallbiznis/bizflow/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bizflow/internal/observability/metrics"
	"github.com/smallbiznis/bizflow/internal/payment"
	paymentdomain "github.com/smallbiznis/bizflow/internal/payment/domain"
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/pdf"
	"github.com/smallbiznis/bizflow/internal/ratelimit"
	"github.com/smallbiznis/bizflow/internal/reporting"
	"github.com/smallbiznis/bizflow/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/bizflow/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	paystack.Module,
	subscription.Module,
	client.Module,
	pdf.Module,
	invoice.Module,
	expense.Module,
	payment.Module,
	reporting.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, log *zap.Logger, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	log             *zap.Logger
	cfg             config.Config
	db              *gorm.DB
	clock           clock.Clock
	genID           *snowflake.Node
	sessions        *session.Manager
	authLimiter     *ratelimit.AuthLimiter
	authSvc         authdomain.Service
	clientSvc       clientdomain.Service
	invoiceSvc      invoicedomain.Service
	expenseSvc      expensedomain.Service
	paymentSvc      paymentdomain.Service
	subscriptionSvc subscriptiondomain.Service
	reportingSvc    reporting.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Log             *zap.Logger
	Cfg             config.Config
	DB              *gorm.DB
	Clock           clock.Clock
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthLimiter     *ratelimit.AuthLimiter
	AuthSvc         authdomain.Service
	ClientSvc       clientdomain.Service
	InvoiceSvc      invoicedomain.Service
	ExpenseSvc      expensedomain.Service
	PaymentSvc      paymentdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ReportingSvc    reporting.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		log:             p.Log.Named("http.server"),
		cfg:             p.Cfg,
		db:              p.DB,
		clock:           p.Clock,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authLimiter:     p.AuthLimiter,
		authSvc:         p.AuthSvc,
		clientSvc:       p.ClientSvc,
		invoiceSvc:      p.InvoiceSvc,
		expenseSvc:      p.ExpenseSvc,
		paymentSvc:      p.PaymentSvc,
		subscriptionSvc: p.SubscriptionSvc,
		reportingSvc:    p.ReportingSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAuthRoutes()
	s.RegisterAPIRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.SignUp)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/stats", s.InvoiceStats)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.POST("/invoices/:id/mark-paid", s.MarkInvoicePaid)
	api.POST("/invoices/:id/payments", s.RecordInvoicePayment)
	api.POST("/invoices/:id/duplicate", s.DuplicateInvoice)
	api.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)
	api.GET("/invoices/:id/activities", s.ListInvoiceActivities)

	// -------- Expenses --------
	api.GET("/expenses", s.ListExpenses)
	api.POST("/expenses", s.CreateExpense)
	api.GET("/expenses/stats", s.ExpenseStats)
	api.GET("/expenses/export", s.ExportExpenses)
	api.POST("/expenses/bulk-delete", s.BulkDeleteExpenses)
	api.GET("/expenses/:id", s.GetExpenseByID)
	api.PATCH("/expenses/:id", s.UpdateExpense)
	api.DELETE("/expenses/:id", s.DeleteExpense)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/stats", s.PaymentStats)
	api.POST("/payments/verify/:reference", s.VerifyPayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.DELETE("/payments/:id", s.DeletePayment)

	// -------- Subscription --------
	api.GET("/subscription", s.GetEntitlement)
	api.POST("/subscription/upgrade", s.InitiateUpgrade)
	api.POST("/subscription/upgrade/complete", s.CompleteUpgrade)

	// -------- Reports --------
	// The dashboard page reads the same numbers as the overview report.
	api.GET("/dashboard", s.ReportOverview)
	api.GET("/reports/overview", s.ReportOverview)
	api.GET("/reports/trend", s.ReportTrend)
	api.GET("/reports/expense-breakdown", s.ReportExpenseBreakdown)
	api.GET("/reports/payment-methods", s.ReportPaymentMethods)
	api.GET("/reports/top-clients", s.ReportTopClients)
	api.GET("/reports/aging", s.ReportInvoiceAging)
}
