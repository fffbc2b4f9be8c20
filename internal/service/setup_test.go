package service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/groupcard/internal/auth"
	"github.com/mmynk/groupcard/internal/gateway"
	"github.com/mmynk/groupcard/internal/middleware"
	"github.com/mmynk/groupcard/internal/orchestrator"
	"github.com/mmynk/groupcard/internal/storage/sqlite"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

type testServer struct {
	groups   pb.GroupServiceClient
	merchant pb.MerchantServiceClient
	auth     pb.AuthServiceClient
	gw       *gateway.Simulated
	jwt      *auth.JWTManager
}

// setupTestServer starts all three services over a temporary SQLite
// database. Merchant calls require a terminal token.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.NewSimulated(0)
	orch := orchestrator.New(store, store, gw, orchestrator.WithLogger(logger))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewSecretAuthenticator(store, bcrypt.MinCost)

	logging := connect.WithInterceptors(middleware.LoggingInterceptor(logger))
	requireAuth := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(pb.NewGroupServiceHandler(NewGroupService(orch), logging))
	mux.Handle(pb.NewMerchantServiceHandler(NewMerchantService(orch), requireAuth, logging))
	mux.Handle(pb.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, logger), logging))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		groups:   pb.NewGroupServiceClient(http.DefaultClient, server.URL),
		merchant: pb.NewMerchantServiceClient(http.DefaultClient, server.URL),
		auth:     pb.NewAuthServiceClient(http.DefaultClient, server.URL),
		gw:       gw,
		jwt:      jwtManager,
	}
}

// newRequest wraps msg in a request carrying the bearer token.
func newRequest[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
