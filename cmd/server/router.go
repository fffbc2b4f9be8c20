package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/groupcard/internal/auth"
	"github.com/mmynk/groupcard/internal/middleware"
	"github.com/mmynk/groupcard/internal/orchestrator"
	"github.com/mmynk/groupcard/internal/service"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

type routerDeps struct {
	orch          *orchestrator.Orchestrator
	authenticator auth.Authenticator
	// jwtManager is nil when terminal auth is disabled.
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

func newRouter(deps routerDeps) http.Handler {
	logging := middleware.LoggingInterceptor(deps.logger)

	groupInterceptors := []connect.Interceptor{logging}
	merchantInterceptors := []connect.Interceptor{logging}
	if deps.jwtManager != nil {
		groupInterceptors = []connect.Interceptor{middleware.OptionalAuth(deps.jwtManager), logging}
		merchantInterceptors = []connect.Interceptor{middleware.RequireAuth(deps.jwtManager), logging}
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	groupPath, groupHandler := pb.NewGroupServiceHandler(
		service.NewGroupService(deps.orch),
		connect.WithInterceptors(groupInterceptors...),
	)
	r.PathPrefix(groupPath).Handler(groupHandler)

	merchantPath, merchantHandler := pb.NewMerchantServiceHandler(
		service.NewMerchantService(deps.orch),
		connect.WithInterceptors(merchantInterceptors...),
	)
	r.PathPrefix(merchantPath).Handler(merchantHandler)

	if deps.jwtManager != nil {
		authPath, authHandler := pb.NewAuthServiceHandler(
			service.NewAuthService(deps.authenticator, deps.jwtManager, deps.logger),
			connect.WithInterceptors(logging),
		)
		r.PathPrefix(authPath).Handler(authHandler)
	}

	r.Use(corsMiddleware, loggingMiddleware(deps.logger))
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// loggingMiddleware logs every HTTP request at debug level; RPC outcomes are
// logged by the Connect interceptor.
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
