package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgetmanage/internal/backend"
	"budgetmanage/internal/cli"
	"budgetmanage/internal/config"
	"budgetmanage/internal/log"
	"budgetmanage/internal/services"
)

// openFunc connects to the configured backend and returns the service with
// its cleanup.
type openFunc func(ctx context.Context, logLevel string) (*services.BudgetService, func() error, error)

type app struct {
	open     openFunc
	logLevel string

	svc     *services.BudgetService
	cleanup func() error
}

// service opens the backend on first use so commands that do not need it
// never touch the database.
func (a *app) service(ctx context.Context) (*services.BudgetService, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	svc, cleanup, err := a.open(ctx, a.logLevel)
	if err != nil {
		return nil, err
	}
	a.svc, a.cleanup = svc, cleanup
	return svc, nil
}

func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

func newRootCmd(open openFunc) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Inspect budgets, category balances and templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(budgetsCmd(a))
	root.AddCommand(summaryCmd(a))
	root.AddCommand(templatesCmd(a))
	root.AddCommand(themesCmd())
	return root
}

func openBackend(ctx context.Context, logLevel string) (*services.BudgetService, func() error, error) {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(logLevel),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	// budgetctl is read-mostly; activation events are still published when
	// AMQP is configured.
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", backendConfig.Type, err)
	}
	return result.Service, result.Cleanup, nil
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(openBackend).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.DeficitStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
