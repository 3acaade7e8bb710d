package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/catalog"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/services/notification"
	"restaurant-pos/internal/services/order"
	"restaurant-pos/internal/services/reports"
	"restaurant-pos/internal/services/tables"
)

func main() {
	var (
		mode       = flag.String("mode", "api-server", "Service mode (api-server, notification-subscriber, migrate)")
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		port       = flag.Int("port", 0, "HTTP port, overrides the configuration")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.NewWithWriter(*mode, os.Stdout, logger.ParseLevel(cfg.Log.Level))
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]any{
		"mode":     *mode,
		"port":     cfg.Server.Port,
		"timezone": cfg.Business.TimeZone,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api-server":
		err = runAPIServer(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}
	log.Info("graceful_shutdown", fmt.Sprintf("%s stopped", *mode), requestID, nil)
}

func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.DB, error) {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, database.Migrations, database.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}

func runAPIServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// Notifications are optional; orders are placed without them.
	var publisher order.Publisher
	if cfg.RabbitMQEnabled() {
		conn, err := messaging.Dial(ctx, cfg.RabbitMQURL(), log)
		if err != nil {
			return err
		}
		p := messaging.NewPublisher(conn, log)
		defer p.Close()
		publisher = p
	}

	timeout := cfg.Server.RequestTimeout
	orderService := order.NewService(order.NewRepository(db.Pool), catalog.New(db.Pool), publisher, log)
	reportService := reports.NewService(reports.NewRepository(db.Pool), cfg.Location())

	router := api.NewRouter(api.Handlers{
		Orders:  order.NewHandler(orderService, log, timeout),
		Tables:  tables.NewHandler(tables.NewService(tables.NewRepository(db.Pool)), log, timeout),
		Reports: reports.NewHandler(reportService, log, timeout),
	}, db, api.RouterConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		AdminRole: cfg.Auth.AdminRole,
	}, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server_listening", fmt.Sprintf("Listening on %s", addr), "", nil)

	return httpx.New(addr, router, cfg.Server).Run(ctx)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	if !cfg.RabbitMQEnabled() {
		return fmt.Errorf("rabbitmq host is not configured")
	}

	conn, err := messaging.Dial(ctx, cfg.RabbitMQURL(), log)
	if err != nil {
		return err
	}
	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	defer consumer.Close()

	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}
