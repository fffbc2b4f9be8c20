package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads, for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SERVER_PORT", "ENVIRONMENT", "STORE_DRIVER", "DB_PATH",
		"DB_SOURCE", "GATEWAY", "STRIPE_SECRET_KEY", "STRIPE_API_URL",
		"JWT_SECRET", "TOKEN_TTL", "GATEWAY_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.StoreDriver != StoreSQLite || cfg.Gateway != GatewaySimulated {
		t.Errorf("unexpected backends %s/%s", cfg.StoreDriver, cfg.Gateway)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %s", cfg.TokenTTL)
	}
	if cfg.AuthEnabled() {
		t.Error("auth should be disabled without JWT_SECRET")
	}
	if cfg.IsProduction() {
		t.Error("expected development by default")
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "groupcard.yaml")
	data := `
port: "9090"
store_driver: memory
gateway_concurrency: 4
token_ttl: 2h
groups:
  - name: Ski Trip
    members:
      - name: Alice
        payment_method_ref: pm_card_visa
      - name: Bob
        email: bob@example.com
        payment_method_ref: pm_card_mastercard
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("expected env to override port, got %s", cfg.Port)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("expected memory store from file, got %s", cfg.StoreDriver)
	}
	if cfg.GatewayConcurrency != 4 || cfg.TokenTTL != 2*time.Hour {
		t.Errorf("unexpected file values: %d, %s", cfg.GatewayConcurrency, cfg.TokenTTL)
	}
	if !cfg.AuthEnabled() {
		t.Error("expected auth to be enabled")
	}
	if len(cfg.Groups) != 1 || len(cfg.Groups[0].Members) != 2 {
		t.Fatalf("unexpected groups: %+v", cfg.Groups)
	}
	if cfg.Groups[0].Members[1].Email != "bob@example.com" {
		t.Errorf("unexpected member: %+v", cfg.Groups[0].Members[1])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"postgres without source", map[string]string{"STORE_DRIVER": "postgres"}, "DB_SOURCE"},
		{"stripe without key", map[string]string{"GATEWAY": "stripe"}, "STRIPE_SECRET_KEY"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "cassandra"}, "unknown store driver"},
		{"unknown gateway", map[string]string{"GATEWAY": "paypal"}, "unknown gateway"},
		{"bad ttl", map[string]string{"TOKEN_TTL": "soon"}, "TOKEN_TTL"},
		{"bad concurrency", map[string]string{"GATEWAY_CONCURRENCY": "many"}, "GATEWAY_CONCURRENCY"},
		{"zero concurrency", map[string]string{"GATEWAY_CONCURRENCY": "0"}, "concurrency"},
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/groupcard.yaml"}, "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
