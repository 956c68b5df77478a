package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"restaurant-kds/internal/config"
	"restaurant-kds/internal/database"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/messaging"
	"restaurant-kds/internal/server"
	"restaurant-kds/internal/services/catalog"
	"restaurant-kds/internal/services/notification"
	"restaurant-kds/internal/services/order"
	"restaurant-kds/internal/services/tracking"
)

const serviceName = "order-service"

// OrderServiceOptions holds flags for the order-service command.
type OrderServiceOptions struct {
	*RootOptions
	Port int
}

// NewOrderServiceCommand creates the order-service command.
func NewOrderServiceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderServiceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Serve the order API and the kitchen display channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.Port
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return runOrderService(ctx, cfg, logger.New(serviceName))
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 3000, "HTTP port (overrides server.port)")

	return cmd
}

// runOrderService runs the order service until ctx is cancelled
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, database.Migrations()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	bus := notification.NewBus(log)
	g, ctx := errgroup.WithContext(ctx)

	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		relay := notification.NewRelay(bus, messaging.NewPublisher(conn, log), cfg.Notifications.SendBuffer, log)
		if err := bus.Subscribe(relay); err != nil {
			return fmt.Errorf("failed to register relay: %w", err)
		}
		g.Go(func() error { return relay.Run(ctx) })
	}

	menu := catalog.NewRepository(db)
	orders := order.NewService(order.NewRepository(db), bus, log)
	lookup := tracking.NewService(tracking.NewRepository(db), log)

	router := server.NewRouter(log, serviceName, db,
		catalog.NewHandler(menu, log),
		order.NewHandler(orders, log),
		tracking.NewHandler(lookup, log),
		notification.NewWebSocketHandler(bus, cfg.Notifications, log),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		err := server.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)

		stats := bus.Stats()
		bus.Close()
		log.Info("service_stopped", "Order service stopped gracefully", "shutdown", map[string]interface{}{
			"delivered": stats.Delivered,
			"dropped":   stats.Dropped,
		})
		return err
	})

	return g.Wait()
}
