package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.SaveTimeout != 5*time.Second {
		t.Fatalf("expected default save timeout, got %v", cfg.SaveTimeout)
	}
	if cfg.MQTTBroker != "" {
		t.Fatalf("expected mqtt disabled by default")
	}
	if cfg.Centered {
		t.Fatalf("expected sessions to start uncentered")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("TRACKING_SAVE_TIMEOUT", "750ms")
	t.Setenv("TRACKING_CENTERED", "true")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Fatalf("expected override broker")
	}
	if cfg.SaveTimeout != 750*time.Millisecond {
		t.Fatalf("expected override save timeout, got %v", cfg.SaveTimeout)
	}
	if !cfg.Centered {
		t.Fatalf("expected override centered")
	}
}
