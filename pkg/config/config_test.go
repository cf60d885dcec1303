package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Forecast.WindowSize != 30 {
		t.Fatalf("expected window 30, got %d", c.Forecast.WindowSize)
	}
	if c.History.Source != "csv" {
		t.Fatalf("expected csv source, got %s", c.History.Source)
	}
	if c.Server.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected write timeout %v", c.Server.WriteTimeout)
	}
}

func TestParseOverrides(t *testing.T) {
	y := `
environment: prod
server:
  port: 9100
forecast:
  artifacts_dir: /models
  max_horizon: 30
cache:
  backend: memory
  ttl: 1m
`
	c, err := Parse([]byte(y))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9100 || c.Forecast.ArtifactsDir != "/models" || c.Forecast.MaxHorizon != 30 {
		t.Fatalf("overrides not applied: %+v", c.Forecast)
	}
	if c.Cache.Backend != "memory" || c.Cache.TTL != time.Minute {
		t.Fatalf("cache overrides not applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad source", "environment: x\nhistory:\n  source: parquet\n", "history.source"},
		{"clickhouse without host", "environment: x\nhistory:\n  source: clickhouse\n", "clickhouse.host"},
		{"redis without addr", "environment: x\ncache:\n  backend: redis\n", "cache.redis.addr"},
		{"kafka without brokers", "environment: x\nkafka:\n  enabled: true\n", "kafka.brokers"},
		{"zero window", "environment: x\nforecast:\n  window_size: 0\n", "window_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"HTTP_PORT":      "9001",
		"KAFKA_BROKERS":  "a:9092,b:9092",
		"HISTORY_SOURCE": "clickhouse",
		"ARTIFACTS_DIR":  "/srv/models",
	}
	c.ApplyEnv(func(k string) string { return env[k] })
	if c.Server.Port != 9001 {
		t.Fatalf("port not overridden: %d", c.Server.Port)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("brokers not overridden: %v", c.Kafka.Brokers)
	}
	if c.History.Source != "clickhouse" || c.Forecast.ArtifactsDir != "/srv/models" {
		t.Fatalf("source/artifacts not overridden")
	}
}
