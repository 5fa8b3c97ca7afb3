package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Serve runs srv on ln until it fails or a signal arrives on sig, then drains
// in-flight requests for up to grace. A second signal or an expired grace
// period forces the listener closed. It returns the process exit code.
func Serve(srv *http.Server, ln net.Listener, grace time.Duration, sig <-chan os.Signal) int {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			return 1
		}
		return 0
	case s := <-sig:
		log.Info().Str("signal", s.String()).Dur("grace", grace).Msg("shutting down gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Shutdown(ctx) }()

	select {
	case err := <-done:
		if err == nil {
			log.Info().Msg("server stopped")
			return 0
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Dur("grace", grace).Msg("forcing shutdown after grace period")
		} else {
			log.Error().Err(err).Msg("error closing server")
		}
		_ = srv.Close()
		return 1
	case s := <-sig:
		log.Warn().Str("signal", s.String()).Msg("second signal received, forcing shutdown")
		_ = srv.Close()
		return 1
	}
}
