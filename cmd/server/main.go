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

// Intake Gateway
//
// Entry point for the public intake gateway. It:
//  1. Loads configuration from config.yaml and environment variables
//  2. Builds the rate-limit ledger (in-memory, or Redis when configured)
//  3. Wires the challenge verifier and the email dispatcher
//  4. Serves the submission, health, and metrics endpoints
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/bcem/intake/internal/challenge"
	"github.com/bcem/intake/internal/config"
	"github.com/bcem/intake/internal/intake"
	"github.com/bcem/intake/internal/mailer"
	"github.com/bcem/intake/internal/metrics"
	"github.com/bcem/intake/internal/notify"
	"github.com/bcem/intake/internal/ratelimit"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting intake gateway")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"rate_limit_window", cfg.RateLimitWindow,
		"rate_limit_max", cfg.RateLimitMax,
		"redis_ledger", cfg.RedisURL != "",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Rate Limit Ledger ---
	var limiter ratelimit.Limiter
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		pingCancel()
		slog.Info("connected to Redis, using shared rate-limit ledger")

		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitWindow, cfg.RateLimitMax)
	} else {
		limiter = ratelimit.NewMemory(cfg.RateLimitWindow, cfg.RateLimitMax)
		slog.Info("using in-memory rate-limit ledger — history resets on restart")
	}

	// --- Challenge Verifier ---
	verifier := challenge.NewVerifier(cfg.ChallengeSecret, cfg.ChallengeVerifyURL)
	if !verifier.Configured() {
		slog.Warn("challenge secret not configured — all submissions treated as verified")
	}

	// --- Email Dispatcher ---
	mailClient := mailer.NewClient(cfg.EmailAPIKey, cfg.EmailAPIURL)
	if !mailClient.Configured() {
		// No safe default here: notifications are the gateway's purpose,
		// so submissions will be rejected with 503 until the key is set.
		slog.Error("email provider API key not configured — submissions will be rejected")
	}
	dispatcher := notify.NewDispatcher(mailClient, cfg.FromAddress, cfg.NotifyAddress)

	// --- HTTP Server ---
	m := metrics.New(prometheus.DefaultRegisterer)
	handler := intake.NewHandler(limiter, verifier, dispatcher, m)
	router := intake.NewRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		if rdb != nil {
			rdb.Close()
		}
	}()

	slog.Info("intake gateway listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("intake gateway stopped")
}
