package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. This test ensures that defaults are documented through
// tests and that changes to defaults are intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Endpoint is the v5 API", func(t *testing.T) {
		t.Parallel()
		if cfg.Endpoint != "https://www.googleapis.com/pagespeedonline/v5/runPagespeed" {
			t.Errorf("unexpected default endpoint: %s", cfg.Endpoint)
		}
	})

	t.Run("default Timeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 60*time.Second {
			t.Errorf("expected Timeout to be 60s, got %v", cfg.Timeout)
		}
	})

	t.Run("default SaveToDB is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("default APIKey is empty", func(t *testing.T) {
		t.Parallel()
		if cfg.APIKey != "" {
			t.Errorf("expected empty APIKey, got %q", cfg.APIKey)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.URLs = []string{"https://example.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no URLs returns ErrNoURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.URLs = nil
		if err := cfg.Validate(); !errors.Is(err, ErrNoURL) {
			t.Errorf("expected ErrNoURL, got %v", err)
		}
	})

	t.Run("relative URL returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.URLs = []string{"example.com/page"}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("non-http scheme returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.URLs = []string{"ftp://example.com"}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("json and markdown together return ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestResolveAPIKey verifies explicit-value-wins-over-environment precedence.
func TestResolveAPIKey(t *testing.T) {
	t.Run("explicit value wins over environment", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "from-env")
		if got := ResolveAPIKey("explicit"); got != "explicit" {
			t.Errorf("expected explicit value, got %q", got)
		}
	})

	t.Run("environment is the fallback", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "from-env")
		if got := ResolveAPIKey(""); got != "from-env" {
			t.Errorf("expected env value, got %q", got)
		}
	})

	t.Run("empty everywhere resolves to empty", func(t *testing.T) {
		t.Setenv(APIKeyEnvVar, "")
		if got := ResolveAPIKey(""); got != "" {
			t.Errorf("expected empty key, got %q", got)
		}
	})
}
