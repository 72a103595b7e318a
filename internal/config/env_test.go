package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_TTL", "bogus")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	env := LoadEnv()
	if env.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %q", env.AppAddr)
	}
	if env.JWTSecret == "" {
		t.Fatalf("expected development secret fallback")
	}
	if env.SessionTTL != 24*time.Hour {
		t.Fatalf("invalid ttl should fall back, got %s", env.SessionTTL)
	}
	if len(env.CORSOrigins) != 2 || env.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", env.CORSOrigins)
	}
}

func TestDSNFromParts(t *testing.T) {
	env := Env{DBUser: "rent", DBPassword: "pw", DBHost: "db", DBPort: "3307", DBName: "locacar"}
	dsn := env.DSN()
	if !strings.HasPrefix(dsn, "rent:pw@tcp(db:3307)/locacar?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn must enable parseTime: %q", dsn)
	}

	env.DBDSN = "custom"
	if env.DSN() != "custom" {
		t.Fatalf("explicit DB_DSN must win")
	}
}
