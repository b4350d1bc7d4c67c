package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustAnchor(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  domain.PathAnchor
		wantPanic bool
	}{
		{name: "unset defaults to block", value: "", expected: domain.AnchorBlock},
		{name: "root", value: "root", expected: domain.AnchorRoot},
		{name: "block", value: "block", expected: domain.AnchorBlock},
		{name: "unknown", value: "middle", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ANCHOR", tt.value)

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("mustAnchor() should have panicked")
					}
				}()
			}

			if got := mustAnchor("TEST_ANCHOR"); !tt.wantPanic && got != tt.expected {
				t.Errorf("mustAnchor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` a.example.com , "b.example.com",, 'c' `)
	expected := []string{"a.example.com", "b.example.com", "c"}
	if len(got) != len(expected) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], expected[i])
		}
	}
	if splitAndTrim("") != nil {
		t.Error("splitAndTrim(\"\") should be nil")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COURSEMARK_STORE", "")
	t.Setenv("COURSEMARK_PATH_DEPTH", "")
	t.Setenv("COURSEMARK_PATH_ANCHOR", "")
	t.Setenv("COURSEMARK_LOG_LEVEL", "info")

	cfg := Load()

	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreSQLite)
	}
	opts := cfg.PathOptions()
	if opts.Depth != domain.DefaultPathDepth || opts.Anchor != domain.AnchorBlock {
		t.Errorf("PathOptions() = %+v, want default", opts)
	}
	if cfg.UserHeader == "" {
		t.Error("UserHeader should have a default")
	}
}

func TestLoadStoreRequirements(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantPanic bool
	}{
		{name: "postgres without dsn", env: map[string]string{"COURSEMARK_STORE": "postgres", "COURSEMARK_SQL_DSN": ""}, wantPanic: true},
		{name: "postgres with dsn", env: map[string]string{"COURSEMARK_STORE": "postgres", "COURSEMARK_SQL_DSN": "host=db user=app dbname=coursemark"}},
		{name: "redis without addr", env: map[string]string{"COURSEMARK_STORE": "redis", "COURSEMARK_REDIS_ADDR": ""}, wantPanic: true},
		{name: "mongo with uri", env: map[string]string{"COURSEMARK_STORE": "mongo", "COURSEMARK_MONGO_URI": "mongodb://db:27017"}},
		{name: "unknown driver", env: map[string]string{"COURSEMARK_STORE": "oracle"}, wantPanic: true},
		{name: "zero depth", env: map[string]string{"COURSEMARK_STORE": "sqlite", "COURSEMARK_PATH_DEPTH": "0"}, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COURSEMARK_LOG_LEVEL", "info")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				r := recover()
				if tt.wantPanic && r == nil {
					t.Errorf("Load() should have panicked")
				}
				if !tt.wantPanic && r != nil {
					t.Errorf("Load() panicked: %v", r)
				}
			}()

			Load()
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{
		StoreDriver:   StorePostgres,
		SQLDSN:        "postgres://app:secret@db/coursemark",
		RedisPassword: "hunter2",
		MongoURI:      "mongodb://app:secret@db:27017",
	}

	r := cfg.Redacted()
	for _, v := range []string{r.SQLDSN, r.RedisPassword, r.MongoURI} {
		if strings.Contains(v, "secret") || strings.Contains(v, "hunter2") {
			t.Errorf("Redacted() leaked %q", v)
		}
	}
	if cfg.RedisPassword != "hunter2" {
		t.Error("Redacted() must not modify the original")
	}
}
