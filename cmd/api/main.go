package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"adstudio/internal/bootstrap"
	"adstudio/internal/http/handlers"
	httpapi "adstudio/internal/http/httpapi"
	"adstudio/internal/infra"
	"adstudio/internal/metrics"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	rec := metrics.NewRecorder("adstudio")
	components, err := bootstrap.Build(ctx, cfg, logger, rec)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipelines")
	}
	defer components.Close()

	app := &handlers.App{
		AdCopy:      components.AdCopy,
		Images:      components.Images,
		History:     components.History,
		FunctionARN: cfg.SelfFunctionARN,
	}
	if components.Library != nil {
		app.Library = components.Library
	}

	opts := httpapi.Options{
		Logger:             logger,
		Metrics:            rec,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if cfg.BlobBackend == infra.BlobFilesystem {
		opts.StaticDir = cfg.StoragePath
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, opts))

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
