package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/propbill/internal/config"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	feetypedomain "github.com/smallbiznis/propbill/internal/feetype/domain"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"github.com/smallbiznis/propbill/internal/observability"
	obsmiddleware "github.com/smallbiznis/propbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/propbill/internal/observability/metrics"
	obstracing "github.com/smallbiznis/propbill/internal/observability/tracing"
	"github.com/smallbiznis/propbill/internal/scheduler"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultHTTPAddr = ":8080"

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = defaultHTTPAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

// BillRunner runs the bill-due sweep on demand.
type BillRunner interface {
	BillDue(ctx context.Context) (scheduler.Summary, error)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	customerSvc customerdomain.Service
	feeTypeSvc  feetypedomain.Service
	settingsSvc settingsdomain.Service
	templateSvc templatedomain.Service
	invoiceSvc  invoicedomain.Service
	billing     BillRunner
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CustomerSvc customerdomain.Service
	FeeTypeSvc  feetypedomain.Service
	SettingsSvc settingsdomain.Service
	TemplateSvc templatedomain.Service
	InvoiceSvc  invoicedomain.Service

	Scheduler *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		customerSvc: p.CustomerSvc,
		feeTypeSvc:  p.FeeTypeSvc,
		settingsSvc: p.SettingsSvc,
		templateSvc: p.TemplateSvc,
		invoiceSvc:  p.InvoiceSvc,
	}
	if p.Scheduler != nil {
		svc.billing = p.Scheduler
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Customers --------
	customers := api.Group("/customers")
	{
		customers.GET("", s.ListCustomers)
		customers.POST("", s.CreateCustomer)
		customers.GET("/:id", s.GetCustomerByID)
		customers.PUT("/:id", s.UpdateCustomer)
		customers.DELETE("/:id", s.DeleteCustomer)
		customers.POST("/:id/properties", s.AddProperty)
		customers.DELETE("/:id/properties/:propertyId", s.DeleteProperty)
	}

	// -------- Fee types --------
	feeTypes := api.Group("/fee-types")
	{
		feeTypes.GET("", s.ListFeeTypes)
		feeTypes.POST("", s.CreateFeeType)
		feeTypes.DELETE("/:id", s.DeleteFeeType)
	}

	// -------- Settings --------
	api.GET("/settings", s.GetSettings)
	api.PUT("/settings", s.UpdateSettings)

	// -------- Templates --------
	templates := api.Group("/templates")
	{
		templates.GET("", s.ListInvoiceTemplates)
		templates.GET("/:name", s.DownloadInvoiceTemplate)
		templates.GET("/:name/inspect", s.InspectInvoiceTemplate)
	}

	// -------- Invoices --------
	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.ListInvoices)
		invoices.POST("", s.GenerateInvoice)
		invoices.DELETE("", s.ClearInvoices)
		invoices.GET("/:id", s.GetInvoiceByID)
		invoices.GET("/:id/download", s.DownloadInvoice)
		invoices.GET("/:id/pdf", s.DownloadInvoicePDF)
		invoices.POST("/:id/toggle-status", s.ToggleInvoiceStatus)
		invoices.POST("/:id/send", s.SendInvoice)
		invoices.DELETE("/:id", s.DeleteInvoice)
	}

	// -------- Billing --------
	api.POST("/run-today", s.RunToday)
}
