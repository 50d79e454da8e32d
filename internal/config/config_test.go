package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PH_JWT_SECRET", "dev-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.KV.Backend != KVRedis {
		t.Errorf("KV.Backend = %q, want %q", cfg.KV.Backend, KVRedis)
	}
	if cfg.Routing.Provider != RoutingOSRM {
		t.Errorf("Routing.Provider = %q, want %q", cfg.Routing.Provider, RoutingOSRM)
	}
	if cfg.Routing.Timeout != 8*time.Second {
		t.Errorf("Routing.Timeout = %v, want 8s", cfg.Routing.Timeout)
	}
	if cfg.Log.Level != "INFO" {
		t.Errorf("Log.Level = %q, want INFO", cfg.Log.Level)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PH_JWT_SECRET", "dev-secret")
	t.Setenv("PH_KV_BACKEND", "Postgres")
	t.Setenv("PH_ROUTING_TIMEOUT_MS", "1500")
	t.Setenv("PH_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KV.Backend != KVPostgres {
		t.Errorf("KV.Backend = %q, want %q", cfg.KV.Backend, KVPostgres)
	}
	if cfg.Routing.Timeout != 1500*time.Millisecond {
		t.Errorf("Routing.Timeout = %v, want 1.5s", cfg.Routing.Timeout)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("Log.Level = %q, want DEBUG", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"PH_AUTH_MODE": "jwt"}},
		{name: "firebase without project", env: map[string]string{"PH_AUTH_MODE": "firebase"}},
		{name: "unknown kv backend", env: map[string]string{"PH_JWT_SECRET": "s", "PH_KV_BACKEND": "etcd"}},
		{name: "google without key", env: map[string]string{"PH_JWT_SECRET": "s", "PH_ROUTING_PROVIDER": "google"}},
		{name: "non-positive timeout", env: map[string]string{"PH_JWT_SECRET": "s", "PH_ROUTING_TIMEOUT_MS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PH_JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
		})
	}
}
