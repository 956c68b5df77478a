package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/messaging"
	"restaurant-kds/internal/services/notification"
)

// SubscriberOptions holds flags for the notification-subscriber command.
type SubscriberOptions struct {
	*RootOptions
	Prefetch int
}

// NewSubscriberCommand creates the notification-subscriber command.
func NewSubscriberCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubscriberOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "notification-subscriber",
		Short: "Print relayed kitchen display events to the console",
		Long: `Connects to the display fanout exchange and prints one line per new order
or status change. Only events published while connected are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			log := logger.New("notification-subscriber")
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			conn, err := messaging.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize messaging: %w", err)
			}

			consumer := messaging.NewConsumer(conn, log, "display-"+uuid.NewString(), opts.Prefetch)
			return notification.NewConsoleSubscriber(consumer, os.Stdout, log).Run(ctx)
		},
	}

	cmd.Flags().IntVar(&opts.Prefetch, "prefetch", 10, "RabbitMQ prefetch count")

	return cmd
}
