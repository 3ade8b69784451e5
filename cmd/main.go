package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/angeloszaimis/statusboard/config"
	"github.com/angeloszaimis/statusboard/internal/board"
	"github.com/angeloszaimis/statusboard/internal/handler"
	"github.com/angeloszaimis/statusboard/internal/httpserver"
	"github.com/angeloszaimis/statusboard/internal/metrics"
	"github.com/angeloszaimis/statusboard/internal/poller"
	"github.com/angeloszaimis/statusboard/internal/statusclient"
	"github.com/angeloszaimis/statusboard/pkg/logger"
)

const metricsBufferSize = 256

type app struct {
	board     *board.Board
	collector *metrics.Collector
	poller    *poller.Poller
	server    *httpserver.Server
}

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("failed to parse flags", slog.Any("err", err))
		os.Exit(2)
	}

	loader, err := config.NewLoader(flags)
	if err != nil {
		slog.Error("failed to bind flags", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := loader.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("Failed to initialize", slog.Any("err", err))
		os.Exit(1)
	}

	if loader.Watch(log, func(c *config.Config) {
		a.board.SetServices(servicesFrom(c))
	}) {
		log.Info("Watching config file for service changes")
	}

	if err := a.run(ctx, log); err != nil {
		log.Error("Error running status board", slog.Any("err", err))
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	b := board.New(servicesFrom(cfg))
	client := statusclient.New(cfg.StatusURL(), cfg.StatusTimeout())
	collector := metrics.NewCollector(metricsBufferSize, log)

	p, err := poller.New(poller.Config{Interval: cfg.PollInterval()}, client, b, collector, log)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Refresh.Rate), cfg.Refresh.Burst)
	pageHandler := handler.NewStatusPageHandler(log, b, p, limiter, cfg.PollInterval())

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(pageHandler, collector, log))
	if err != nil {
		return nil, err
	}

	log.Info("Status board configured",
		slog.String("status_url", client.URL()),
		slog.Int("services", len(cfg.Services)),
		slog.Duration("interval", cfg.PollInterval()))

	return &app{
		board:     b,
		collector: collector,
		poller:    p,
		server:    srv,
	}, nil
}

// run serves the page and polls until ctx is cancelled or the server fails.
func (a *app) run(ctx context.Context, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.collector.Start(ctx)

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		a.poller.Run(ctx)
	}()

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- a.server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := a.server.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case runErr = <-srvErrCh:
	}

	cancel()
	<-pollerDone

	return runErr
}

func servicesFrom(cfg *config.Config) []board.Service {
	services := make([]board.Service, 0, len(cfg.Services))
	for _, s := range cfg.Services {
		services = append(services, board.Service{Name: s.Name, DisplayName: s.DisplayName})
	}
	return services
}
