package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rcabrera/tindahan/internal"
	"github.com/rcabrera/tindahan/internal/events"
	"github.com/rcabrera/tindahan/internal/handler/admin"
	"github.com/rcabrera/tindahan/internal/handler/storefront"
	"github.com/rcabrera/tindahan/internal/middleware"
	"github.com/rcabrera/tindahan/internal/postgres"
	"github.com/rcabrera/tindahan/internal/router"
	"github.com/rcabrera/tindahan/internal/routes"
	"github.com/rcabrera/tindahan/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	productStore := postgres.NewProductStore(pool)
	cartStore := postgres.NewCartStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	customerStore := postgres.NewCustomerStore(pool)
	chatStore := postgres.NewChatStore(pool)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS connection established")
	}

	// Initialize services
	cartService := service.NewCartService(cartStore, productStore)
	checkoutService := service.NewCheckoutService(cartStore, productStore, orderStore, customerStore, logger)
	orderService := service.NewOrderService(orderStore, productStore, publisher, logger)
	chatService := service.NewChatService(chatStore, customerStore, publisher, logger)

	// Handler dependencies
	storefrontDeps := routes.StorefrontDeps{
		CartHandler:         storefront.NewCartHandler(cartService, logger),
		OrderHandler:        storefront.NewOrderHandler(checkoutService, orderService, logger),
		NotificationHandler: storefront.NewNotificationHandler(orderService, logger),
		ChatHandler:         storefront.NewChatHandler(chatService, logger),
	}
	adminDeps := routes.AdminDeps{
		OrderHandler: admin.NewOrderHandler(orderService, logger),
		ChatHandler:  admin.NewChatHandler(chatService, logger),
	}

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics(cfg.Metrics.Namespace)

	// Create router and register routes
	mws := []router.Middleware{
		router.Recovery(logger),
		middleware.RequestID,
	}
	if cfg.Metrics.Enabled {
		mws = append(mws, metrics.Middleware)
	}
	mws = append(mws,
		router.CORS(cfg.CORSOrigins),
		router.Logger(logger),
	)
	r := router.New(mws...)

	if cfg.Metrics.Enabled {
		// Should be protected in production via firewall
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			metrics.Handler().ServeHTTP(w, req)
		})
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
