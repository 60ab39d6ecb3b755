package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/CallRelay/internal/adapters/http"
	"github.com/dkeye/CallRelay/internal/app"
	"github.com/dkeye/CallRelay/internal/app/orch"
	"github.com/dkeye/CallRelay/internal/config"
	"github.com/dkeye/CallRelay/internal/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config, using defaults")
		cfg = config.Default()
	}
	setupLogger(cfg)

	tracer, shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Environment:  cfg.Mode,
	})
	if err != nil {
		log.Error().Err(err).Str("exporter", cfg.TraceExporter).Msg("tracing disabled")
		tracer, shutdownTracing, _ = tracing.Setup(ctx, tracing.Config{Exporter: tracing.ExporterNone})
	}

	policy, err := app.PolicyFromName(cfg.SlowObserverPolicy)
	if err != nil {
		log.Error().Err(err).Msg("falling back to drop policy")
		policy = app.DropPolicy{}
	}

	o := orch.New(app.NewCallRegistry(), app.NewHub(), policy, tracing.NewCallSpans(tracer))

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("call relay started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// setupLogger keeps the console writer for debug runs and switches to
// plain JSON otherwise.
func setupLogger(cfg *config.Config) {
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
