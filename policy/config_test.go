package policy

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RetryEnabled || cfg.CircuitBreakerEnabled || cfg.TimeoutEnabled {
		t.Error("all mechanisms must start disabled")
	}
	if cfg.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", cfg.RetryCount)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if !cfg.ExponentialBackoff {
		t.Error("ExponentialBackoff should default to true")
	}
	if cfg.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want 5", cfg.FailureThreshold)
	}
	if cfg.BreakDuration != 30*time.Second {
		t.Errorf("BreakDuration = %v, want 30s", cfg.BreakDuration)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"negative retry count", func(c *Config) { c.RetryCount = -1 }, true},
		{"zero retry count valid", func(c *Config) { c.RetryCount = 0 }, false},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, true},
		{"zero delay valid", func(c *Config) { c.RetryDelay = 0 }, false},
		{"zero threshold", func(c *Config) { c.FailureThreshold = 0 }, true},
		{"negative break", func(c *Config) { c.BreakDuration = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig wrap", err)
			}
		})
	}
}
