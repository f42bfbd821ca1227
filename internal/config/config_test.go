package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_URL", "ENV", "LOG_LEVEL", "LOG_FORMAT", "HTTP_TIMEOUT",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MIN_NIGHTS", "MAX_NIGHTS",
		"PORT", "JWT_SECRET", "JWT_EXPIRY", "REFRESH_EXPIRY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("STAYBOOK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.MinNights != 1 || cfg.MaxNights != 20 {
		t.Errorf("Load() nights = %d..%d, want 1..20", cfg.MinNights, cfg.MaxNights)
	}
	if cfg.JWTExpiry != 15*time.Minute {
		t.Errorf("Load() JWTExpiry = %v, want 15m", cfg.JWTExpiry)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "staybook.yaml")
	yaml := "api_url: https://yaml.example.com/api\nmin_nights: 2\nmax_nights: 14\nhttp_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	t.Setenv("STAYBOOK_CONFIG", path)
	t.Setenv("MAX_NIGHTS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.APIURL != "https://yaml.example.com/api" {
		t.Errorf("APIURL = %q, want value from YAML", cfg.APIURL)
	}
	if cfg.MinNights != 2 {
		t.Errorf("MinNights = %d, want 2", cfg.MinNights)
	}
	if cfg.MaxNights != 30 {
		t.Errorf("MaxNights = %d, want 30 from env", cfg.MaxNights)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "staybook.yaml")
	if err := os.WriteFile(path, []byte("min_nights: [oops"), 0o600); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	t.Setenv("STAYBOOK_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_NIGHTS", "two")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.MinNights != 1 {
		t.Errorf("MinNights = %d, want default 1", cfg.MinNights)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"no api url", func(c *Config) { c.APIURL = "" }, ErrAPIURLRequired},
		{"zero min", func(c *Config) { c.MinNights = 0 }, ErrInvalidStayRange},
		{"max below min", func(c *Config) { c.MinNights = 5; c.MaxNights = 3 }, ErrInvalidStayRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStub(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateStub(); err != nil {
		t.Errorf("ValidateStub() in development error = %v, want nil", err)
	}

	cfg.Env = "production"
	if err := cfg.ValidateStub(); err != ErrDevSecret {
		t.Errorf("ValidateStub() error = %v, want %v", err, ErrDevSecret)
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.ValidateStub(); err != nil {
		t.Errorf("ValidateStub() error = %v, want nil", err)
	}
}
