// Package server wires configuration, storage, services and the operator
// command line into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/warbler/internal/cli"
	"github.com/dmitrijs2005/warbler/internal/logging"
	"github.com/dmitrijs2005/warbler/internal/monitoring"
	"github.com/dmitrijs2005/warbler/internal/server/config"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/warbler/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *prometheus.Registry
	cli         *cli.App
}

// NewApp opens the database pool and builds the services. No connection is
// made until a command needs one.
func NewApp(c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(os.Stderr, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	rm := repomanager.NewPostgresRepositoryManager()

	credentials, err := services.NewCredentialService(db, rm, c, logger, metrics)
	if err != nil {
		db.Close()
		return nil, err
	}
	follows := services.NewFollowService(db, rm, c.TxMaxRetries, logger, metrics)
	likes := services.NewLikeService(db, rm, c.TxMaxRetries, logger, metrics)
	messages := services.NewMessageService(db, rm)

	app := &App{config: c, logger: logger, db: db, repomanager: rm, registry: registry}
	app.cli = cli.NewApp(credentials, follows, likes, messages, app, in, out)
	return app, nil
}

// Migrate brings the schema up to date.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	app.logger.Info(ctx, "migrations applied")
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run executes one command and pushes the collected metrics afterwards.
func (app *App) Run(ctx context.Context, args []string) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	err := app.cli.Run(ctx, args)
	if err != nil {
		app.logger.Error(ctx, "command failed", "args", args, "error", err)
	}

	if pushErr := monitoring.Push(app.config.PushGatewayURL, app.registry); pushErr != nil {
		app.logger.Warn(ctx, "metrics push failed", "error", pushErr)
	}

	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
