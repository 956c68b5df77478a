package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"restaurant-kds/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the kitchen display service.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kds",
		Short: "Kitchen display order pipeline",
		Long: `Accepts table orders, prices them against the menu, stores them atomically
and pushes new orders and status changes to every connected kitchen display.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to the YAML config file")

	cmd.AddCommand(NewOrderServiceCommand(opts))
	cmd.AddCommand(NewSubscriberCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.ConfigPath)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
