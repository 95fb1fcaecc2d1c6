package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("FAMILY_PLANNER_AUTH_JWT_SECRET", testSecret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Server.Port != "8080" {
			t.Errorf("Expected port '8080', got '%s'", cfg.Server.Port)
		}
		if cfg.Shopping.DuplicateWindow != 5*time.Second {
			t.Errorf("Expected duplicate window 5s, got %v", cfg.Shopping.DuplicateWindow)
		}
		if cfg.Secondary.Type != SecondaryFile {
			t.Errorf("Expected secondary type 'file', got '%s'", cfg.Secondary.Type)
		}
		if cfg.Auth.TokenTTL != 720*time.Hour {
			t.Errorf("Expected token TTL 720h, got %v", cfg.Auth.TokenTTL)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("FAMILY_PLANNER_AUTH_JWT_SECRET", testSecret)
		t.Setenv("FAMILY_PLANNER_SERVER_PORT", "9090")
		t.Setenv("FAMILY_PLANNER_SHOPPING_DUPLICATE_WINDOW", "2s")
		t.Setenv("FAMILY_PLANNER_SECONDARY_TYPE", "none")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Server.Port != "9090" {
			t.Errorf("Expected port '9090', got '%s'", cfg.Server.Port)
		}
		if cfg.Shopping.DuplicateWindow != 2*time.Second {
			t.Errorf("Expected duplicate window 2s, got %v", cfg.Shopping.DuplicateWindow)
		}
		if cfg.Secondary.Type != SecondaryNone {
			t.Errorf("Expected secondary type 'none', got '%s'", cfg.Secondary.Type)
		}
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("FAMILY_PLANNER_AUTH_JWT_SECRET", "")

		_, err := Load()
		if err == nil {
			t.Fatal("Expected an error for a missing JWT secret, got nil")
		}
		if !strings.Contains(err.Error(), "FAMILY_PLANNER_AUTH_JWT_SECRET") {
			t.Errorf("Expected error to name the env var, got '%s'", err.Error())
		}
	})

	t.Run("MongoWithoutURI", func(t *testing.T) {
		t.Setenv("FAMILY_PLANNER_AUTH_JWT_SECRET", testSecret)
		t.Setenv("FAMILY_PLANNER_SECONDARY_TYPE", "mongo")

		if _, err := Load(); err == nil {
			t.Fatal("Expected an error for mongo without a URI, got nil")
		}
	})

	t.Run("UnknownSecondary", func(t *testing.T) {
		t.Setenv("FAMILY_PLANNER_AUTH_JWT_SECRET", testSecret)
		t.Setenv("FAMILY_PLANNER_SECONDARY_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Fatal("Expected an error for an unknown secondary type, got nil")
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7070"
auth:
  jwt_secret: "` + testSecret + `"
secondary:
  type: mongo
  mongo_uri: mongodb://localhost:27017
logging:
  format: json
telegram:
  bot_token: "123:abc"
  users:
    - telegram_id: 42
      user_id: alice
      family_id: fam-1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Expected port '7070', got '%s'", cfg.Server.Port)
	}
	if cfg.Secondary.MongoDatabase != "family_planner" {
		t.Errorf("Expected default mongo database, got '%s'", cfg.Secondary.MongoDatabase)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json logging, got '%s'", cfg.Logging.Format)
	}

	u, ok := cfg.Telegram.TelegramActor(42)
	if !ok || u.UserID != "alice" || u.FamilyID != "fam-1" {
		t.Errorf("Expected telegram user 42 to map to alice/fam-1, got %+v", u)
	}
	if _, ok := cfg.Telegram.TelegramActor(7); ok {
		t.Error("Expected unknown telegram user to be rejected")
	}

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}
}
