// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_EnvOnly verifies an env-only deployment with no config file.
func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("CHALLENGE_SECRET", "cs-secret")
	t.Setenv("EMAIL_API_KEY", "re-key")
	t.Setenv("MAIL_FROM", "Gateway <noreply@example.com>")
	t.Setenv("MAIL_NOTIFY_TO", "ops@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("window = %v, want 30s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 5 {
		t.Errorf("max = %d, want 5", cfg.RateLimitMax)
	}
	if cfg.ChallengeSecret != "cs-secret" {
		t.Errorf("challenge secret = %q", cfg.ChallengeSecret)
	}
	if cfg.EmailAPIKey != "re-key" {
		t.Errorf("email api key = %q", cfg.EmailAPIKey)
	}
}

// TestLoad_YAMLWithExpansion verifies file values win and ${VAR} references
// are expanded.
func TestLoad_YAMLWithExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7070
rate_limit:
  window: 2m
  max: 10
challenge:
  secret: ${TEST_CHALLENGE_SECRET}
email:
  from: Gateway <noreply@example.com>
  notify_to: ops@example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TEST_CHALLENGE_SECRET", "expanded-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Port)
	}
	if cfg.RateLimitWindow != 2*time.Minute {
		t.Errorf("window = %v, want 2m", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 10 {
		t.Errorf("max = %d, want 10", cfg.RateLimitMax)
	}
	if cfg.ChallengeSecret != "expanded-secret" {
		t.Errorf("challenge secret = %q, want expanded value", cfg.ChallengeSecret)
	}
}

// TestLoad_RequiresAddresses verifies missing mail addresses fail loudly at
// load time rather than at the first submission.
func TestLoad_RequiresAddresses(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MAIL_FROM", "")
	t.Setenv("MAIL_NOTIFY_TO", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing addresses, got none")
	}

	t.Setenv("MAIL_FROM", "Gateway <noreply@example.com>")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing operator address, got none")
	}
}
