package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Session.Store != StoreMemory {
			t.Errorf("expected memory session store, got %s", config.Session.Store)
		}

		if config.Database.Path != "./resonate.db" {
			t.Errorf("expected database path ./resonate.db, got %s", config.Database.Path)
		}

		if err := config.Credentials.Spotify.Validate(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected default config to have no spotify credentials, got %v", err)
		}

		if len(config.Server.AllowedOrigins) != 2 {
			t.Errorf("expected 2 allowed origins, got %v", config.Server.AllowedOrigins)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[session]
store = "sqlite"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:5173/callback"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Session.Store != StoreSQLite {
			t.Errorf("expected sqlite store, got %s", config.Session.Store)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Database.Path != "./resonate.db" {
			t.Errorf("expected unset keys to keep defaults, got database path %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("LoadConfigOrDefault", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("expected defaults, got error %v", err)
		}
		if config.Server.Port != 5000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Server.Port = 7000
		config.Redis.Addr = "redis:6379"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Server.Port != 7000 || loaded.Redis.Addr != "redis:6379" {
			t.Errorf("saved values not loaded back: %+v", loaded.Server)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown store", func(c *Config) { c.Session.Store = "etcd" }},
		{"sqlite without path", func(c *Config) { c.Session.Store = StoreSQLite; c.Database.Path = "" }},
		{"redis without addr", func(c *Config) { c.Session.Store = StoreRedis; c.Redis.Addr = "" }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSpotifyConfig(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		if err := (SpotifyConfig{ClientID: "id"}).Validate(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if err := (SpotifyConfig{ClientID: "id", ClientSecret: "secret"}).Validate(); err != nil {
			t.Errorf("expected valid credentials, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		if got := (SpotifyConfig{}).Timeout(); got != 15*time.Second {
			t.Errorf("expected default 15s, got %v", got)
		}
		if got := (SpotifyConfig{TimeoutSeconds: 3}).Timeout(); got != 3*time.Second {
			t.Errorf("expected 3s, got %v", got)
		}
	})
}
