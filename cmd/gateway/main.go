package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "guide_gateway/internal/adapters/http_server"
	"guide_gateway/internal/adapters/observability"
	"guide_gateway/internal/adapters/upstream"
	"guide_gateway/internal/app"
	"guide_gateway/internal/shared"
)

func main() { os.Exit(run()) }

func run() int {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	opts := upstream.Options{
		Timeout: cfg.UpstreamTimeout,
		RPS:     cfg.UpstreamRPS,
		Retries: cfg.UpstreamRetries,
	}
	guideCl, err := upstream.New("guide", cfg.GuideServiceURL, opts)
	if err != nil {
		log.Error().Err(err).Msg("guide client")
		return 1
	}
	restCl, err := upstream.New("restaurant", cfg.RestaurantServiceURL, opts)
	if err != nil {
		log.Error().Err(err).Msg("restaurant client")
		return 1
	}

	// deps
	svc := app.NewGuideService(
		upstream.NewGuideClient(guideCl),
		upstream.NewRestaurantClient(restCl),
		cfg.FanoutLimit,
	)

	// http
	srv := server.New(server.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: cfg.CORSCredentials,
		RequestTimeout:   cfg.RequestTimeout,
	})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: svc})
	observability.Serve(cfg.MetricsAddr, reg)

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.HTTPAddr).Msg("listen failed")
		return 1
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("env", cfg.AppEnv).
		Str("guide_service", cfg.GuideServiceURL).
		Str("restaurant_service", cfg.RestaurantServiceURL).
		Msg("API listening")

	httpSrv := &http.Server{Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	return server.Serve(httpSrv, ln, cfg.ShutdownGrace, sig)
}
