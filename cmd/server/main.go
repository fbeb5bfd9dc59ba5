package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/filestore"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mailer"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/validate"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	baseCtx := logging.IntoContext(context.Background(), logger)

	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var (
		events  mykafka.Publisher = mykafka.Nop{}
		closers []io.Closer
	)
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		events = prod
		closers = append(closers, prod)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.Indexer
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
		esClient, err := es.NewClient(ctx, cfg)
		cancel()
		if err != nil {
			logger.Error("es_unavailable", "error", err)
		} else {
			index = &es.ProductIndex{ES: esClient, Index: cfg.ESIndex}
		}
	}

	var gateway payment.Gateway = payment.Stub{}
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripe(cfg.StripeSecretKey, cfg.StripeCurrency)
	} else {
		logger.Warn("stripe_disabled", "reason", "STRIPE_SECRET_KEY is empty")
	}

	var mail mailer.Sender = mailer.Log{}
	if cfg.SendGridAPIKey != "" {
		mail = mailer.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFrom)
	}

	r := &repo.GormRepo{DB: gdb}
	images := filestore.New(cfg.ImageDir)

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Mailer:        mail,
		Events:        events,
		BaseURL:       cfg.BaseURL,
	}
	catalogSvc := &service.CatalogService{Repo: r, Images: images, Index: index, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CSRFSecure
	csrfCfg.SkipPaths = []string{"/health/live", "/health/ready"}
	e.Use(csrf.Middleware(csrfCfg))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		AdminHandler:   &httpserver.AdminHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}},
		OrderHandler: &httpserver.OrderHTTP{
			Orders:   &service.OrderService{Repo: r, Events: events},
			Invoices: &service.InvoiceService{Repo: r, Store: &invoice.Store{Dir: cfg.InvoiceDir}},
			Checkout: &service.CheckoutService{Repo: r, Gateway: gateway, BaseURL: cfg.BaseURL},
		},
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		Gate:        authmw.NewSessionGate(cfg.JWTAccessSecret, authSvc),
		ImageDir:    cfg.ImageDir,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close_error", "error", err)
		}
	}

	logger.Info("shutdown_complete")
}
