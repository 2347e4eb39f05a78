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

// Package config loads configuration from config.yaml and environment
// variables. The YAML file is optional; most deployments of the gateway run
// on environment variables alone.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the intake gateway.
type Config struct {
	// Server
	Port int

	// Rate limiting
	RateLimitWindow time.Duration
	RateLimitMax    int

	// Optional shared ledger. Empty means the in-memory limiter.
	RedisURL string

	// Challenge verification. An empty secret degrades to pass-through.
	ChallengeSecret    string
	ChallengeVerifyURL string

	// Email. A missing API key is tolerated at startup but every
	// submission is rejected with 503 until it is set.
	EmailAPIKey   string
	EmailAPIURL   string
	FromAddress   string
	NotifyAddress string
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	RateLimit struct {
		Window string `yaml:"window"`
		Max    int    `yaml:"max"`
	} `yaml:"rate_limit"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Challenge struct {
		Secret    string `yaml:"secret"`
		VerifyURL string `yaml:"verify_url"`
	} `yaml:"challenge"`
	Email struct {
		APIKey   string `yaml:"api_key"`
		APIURL   string `yaml:"api_url"`
		From     string `yaml:"from"`
		NotifyTo string `yaml:"notify_to"`
	} `yaml:"email"`
}

// Load reads configuration from config.yaml (with env var expansion) when the
// file exists, with environment variables as fallbacks for every setting.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Env-only deployment.
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	default:
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	}

	cfg := &Config{
		Port:               firstNonZero(raw.Server.Port, envOrDefaultInt("PORT", 8080)),
		RateLimitWindow:    envOrDefaultDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		RateLimitMax:       envOrDefaultInt("RATE_LIMIT_MAX", 3),
		RedisURL:           firstNonEmpty(raw.Redis.URL, os.Getenv("REDIS_URL")),
		ChallengeSecret:    firstNonEmpty(raw.Challenge.Secret, os.Getenv("CHALLENGE_SECRET")),
		ChallengeVerifyURL: firstNonEmpty(raw.Challenge.VerifyURL, os.Getenv("CHALLENGE_VERIFY_URL")),
		EmailAPIKey:        firstNonEmpty(raw.Email.APIKey, os.Getenv("EMAIL_API_KEY")),
		EmailAPIURL:        firstNonEmpty(raw.Email.APIURL, os.Getenv("EMAIL_API_URL")),
		FromAddress:        firstNonEmpty(raw.Email.From, os.Getenv("MAIL_FROM")),
		NotifyAddress:      firstNonEmpty(raw.Email.NotifyTo, os.Getenv("MAIL_NOTIFY_TO")),
	}

	if raw.RateLimit.Window != "" {
		d, err := time.ParseDuration(raw.RateLimit.Window)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.window: %w", err)
		}
		cfg.RateLimitWindow = d
	}
	if raw.RateLimit.Max > 0 {
		cfg.RateLimitMax = raw.RateLimit.Max
	}

	// The internal notification is mandatory infrastructure; without
	// addresses the gateway cannot do its one job.
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("sender address is required — set email.from or MAIL_FROM")
	}
	if cfg.NotifyAddress == "" {
		return nil, fmt.Errorf("operator address is required — set email.notify_to or MAIL_NOTIFY_TO")
	}

	return cfg, nil
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
