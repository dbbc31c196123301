package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", c.HTTPAddr)
	}
	if c.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", c.DBDriver)
	}
	if c.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout = %v, want 5s", c.StoreTimeout)
	}
	if c.TokenTTL() != time.Hour {
		t.Errorf("TokenTTL() = %v, want 1h", c.TokenTTL())
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", c.CORSOrigins)
	}
	if c.AllowAdminSignup {
		t.Error("AllowAdminSignup should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", " Postgres ")
	t.Setenv("JWT_EXPIRE_MIN", "15")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://example.com")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", c.DBDriver)
	}
	if c.TokenTTL() != 15*time.Minute {
		t.Errorf("TokenTTL() = %v, want 15m", c.TokenTTL())
	}
	if len(c.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two entries", c.CORSOrigins)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "restored-after-test")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}
