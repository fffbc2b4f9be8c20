package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/groupcard/internal/auth"
	"github.com/mmynk/groupcard/internal/config"
	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/orchestrator"
	"github.com/mmynk/groupcard/internal/storage"
	"github.com/mmynk/groupcard/internal/storage/memory"
	"github.com/mmynk/groupcard/internal/storage/postgres"
	"github.com/mmynk/groupcard/internal/storage/sqlite"
	"github.com/mmynk/groupcard/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Env)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.StoreDriver)

	gw := gateway.WithMetrics(newGateway(cfg))
	logger.Info("Payment gateway initialized", "gateway", cfg.Gateway)

	orch := orchestrator.New(store, store, gw,
		orchestrator.WithConcurrency(cfg.GatewayConcurrency),
		orchestrator.WithLogger(logger),
	)
	if err := seedGroups(ctx, orch, cfg.Groups, logger); err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled() {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	} else {
		logger.Warn("JWT_SECRET not set, merchant calls are unauthenticated")
	}

	router := newRouter(routerDeps{
		orch:          orch,
		authenticator: auth.NewSecretAuthenticator(store, 0),
		jwtManager:    jwtManager,
		logger:        logger,
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		// h2c serves HTTP/2 without TLS, which gRPC-protocol clients need.
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", "http://localhost"+server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StorePostgres:
		store, err := postgres.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func newGateway(cfg *config.Config) gateway.Gateway {
	if cfg.Gateway == config.GatewayStripe {
		return gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeAPIURL)
	}
	return gateway.NewSimulated(150 * time.Millisecond)
}
