package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openfolio/brokerd/auth"
	"github.com/openfolio/brokerd/broker"
	"github.com/openfolio/brokerd/config"
	"github.com/openfolio/brokerd/ledger"
	"github.com/openfolio/brokerd/quote"
	"github.com/openfolio/brokerd/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the brokerage HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

// newProvider builds the configured quote provider chain.
func newProvider(cfg *config.Config) (quote.Provider, func(), error) {
	var base quote.Provider
	switch cfg.Quote.Provider {
	case "http":
		base = quote.NewHTTP(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.TimeoutDuration())
	default:
		base = quote.NewSim()
	}

	ttl := cfg.Quote.CacheTTLDuration()
	if ttl <= 0 {
		return base, func() {}, nil
	}
	cached, err := quote.Cached(base, ttl)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}

func serve(cfg *config.Config) error {
	if cfg.Server.SessionSecret == "" {
		return fmt.Errorf("server.session_secret is required (set BROKERD_SESSION_SECRET)")
	}

	log, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := ledger.Open(cfg.Ledger.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, closeProvider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	brokerSvc := broker.New(store, provider, log)
	authSvc := auth.New(store, cfg.Auth.StartingCashDecimal(), cfg.Auth.BcryptCost, log)
	srv := web.NewServer(brokerSvc, authSvc, cfg.Server.SessionSecret, log)

	server := &http.Server{Addr: cfg.Server.Listen, Handler: srv.R}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("addr", cfg.Server.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sig:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
