package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	jwt "github.com/auth0/go-jwt"
	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, cfg config, args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg.bindFlags(fs)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Realm, "realm", cfg.Realm, "realm announced in WWW-Authenticate challenges")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := newHandler(cfg, logger, reg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("Listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newHandler serves /whoami behind the JWT middleware. /healthz and /metrics
// are excluded from authentication.
func newHandler(cfg config, logger *logrus.Logger, reg *prometheus.Registry) (http.Handler, error) {
	verifier, err := cfg.newVerifier(logger, reg)
	if err != nil {
		return nil, err
	}

	opts := []jwtmiddleware.Option{
		jwtmiddleware.WithVerifier(verifier),
		jwtmiddleware.WithLogger(jwt.NewLogrusLogger(logger)),
		jwtmiddleware.WithExclusionUrls([]string{"/healthz", "/metrics"}),
	}
	if cfg.Realm != "" {
		opts = append(opts, jwtmiddleware.WithRealm(cfg.Realm))
	}
	middleware, err := jwtmiddleware.New(opts...)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /whoami", whoami)

	return middleware.CheckJWT(mux), nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	token := jwtmiddleware.MustGetToken(r.Context())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Header jwt.Header `json:"header"`
		Claims jwt.Claims `json:"claims"`
	}{token.Header(), token.Claims()})
}
