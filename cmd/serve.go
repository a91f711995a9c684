package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-orders/app/controller"
	"github.com/vibast-solutions/ms-go-orders/app/gateway"
	"github.com/vibast-solutions/ms-go-orders/app/plan"
	"github.com/vibast-solutions/ms-go-orders/app/repository"
	"github.com/vibast-solutions/ms-go-orders/app/service"
	"github.com/vibast-solutions/ms-go-orders/app/types"
	"github.com/vibast-solutions/ms-go-orders/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the orders service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, orderService, cleanup := mustCreateOrderService()
	defer cleanup()

	orderController := controller.NewOrderController(orderService, cfg.Razorpay.KeyID)
	e := setupHTTPServer(orderController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(orderController *controller.OrderController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", orderController.Health)

	orders := e.Group("/orders", requireRequestID())
	orders.POST("", orderController.CreateOrder)
	orders.GET("/:id", orderController.GetOrderStatus)

	payments := e.Group("/payments", requireRequestID())
	payments.POST("/verify", orderController.VerifyPayment)
	payments.POST("/failed", orderController.PaymentFailed)
	payments.GET("/history", orderController.GetPaymentHistory)

	// The gateway does not send a request id, so the webhook route skips
	// that requirement.
	webhooks := e.Group("/webhooks")
	webhooks.POST("/razorpay", orderController.HandleWebhook)

	return e
}

func requireRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

func mustCreateOrderService() (*config.Config, *service.OrderService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	cleanup := func() {}
	var orderService *service.OrderService
	catalog := buildCatalog(cfg)
	gw := buildGateway(cfg)

	switch cfg.Store.Backend {
	case config.StoreBackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}

		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.Ping(); err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to ping database")
		}

		orderService = service.NewOrderService(
			repository.NewOrderRepository(db),
			repository.NewPaymentRepository(db),
			gw,
			catalog,
			cfg.Razorpay,
		)
		cleanup = func() {
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close database")
			}
		}
	default:
		orderService = service.NewOrderService(
			repository.NewMemoryOrderRepository(),
			repository.NewMemoryPaymentRepository(),
			gw,
			catalog,
			cfg.Razorpay,
		)
	}

	return cfg, orderService, cleanup
}

func buildCatalog(cfg *config.Config) *plan.Catalog {
	plans := make([]plan.Plan, 0, len(cfg.Plans))
	for _, p := range cfg.Plans {
		plans = append(plans, plan.Plan{
			Type:          p.Type,
			DisplayName:   p.DisplayName,
			QuestionCount: p.QuestionCount,
			Price:         p.Price,
		})
	}
	return plan.NewCatalog(plans...)
}

func buildGateway(cfg *config.Config) gateway.Gateway {
	if cfg.Razorpay.Simulate {
		logrus.Warn("Gateway simulation enabled; no remote orders will be created")
		return gateway.Simulated{}
	}
	return gateway.NewRazorpayGateway(gateway.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
	})
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
