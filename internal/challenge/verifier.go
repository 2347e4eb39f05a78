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

// Package challenge confirms client-side proof-of-humanity tokens against an
// external verification service.
//
// The verifier is three-way, not binary:
//
//   - Unconfigured (no secret): every submission is treated as verified. The
//     gateway keeps working with reduced protection instead of refusing all
//     traffic.
//   - Configured, no token supplied: not verified, no network call.
//   - Configured with a token: one server-to-server check; any network or
//     parse failure counts as not verified, never as a hard error.
package challenge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bcem/intake/internal/models"
)

// DefaultVerifyURL is the Turnstile server-side verification endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// verifyTimeout bounds the single outbound verification call. A slow provider
// is treated the same as a failed check.
const verifyTimeout = 5 * time.Second

// Verifier checks challenge tokens with the external service.
type Verifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewVerifier creates a verifier. An empty secret means the service is
// unconfigured and the verifier degrades to pass-through. An empty verifyURL
// selects the default endpoint.
func NewVerifier(secret, verifyURL string) *Verifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{
		secret:    secret,
		verifyURL: verifyURL,
		httpClient: &http.Client{
			Timeout: verifyTimeout,
		},
	}
}

// Configured reports whether a verification secret is present.
func (v *Verifier) Configured() bool {
	return v.secret != ""
}

// Verify determines whether the token represents a genuine proof-of-humanity
// assertion. A single attempt per request; no retries.
func (v *Verifier) Verify(ctx context.Context, token string) models.VerificationOutcome {
	if !v.Configured() {
		// Fail open: anti-bot not set up is a tolerated state, not an outage.
		return models.VerificationOutcome{Verified: true}
	}

	if token == "" {
		return models.VerificationOutcome{
			Verified:   false,
			ErrorCodes: []string{"missing-input-response"},
		}
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Warn("build challenge verification request failed", "error", err)
		return models.VerificationOutcome{Verified: false}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// Fail closed on the network path: the submitter can simply retry.
		slog.Warn("challenge verification request failed", "error", err)
		return models.VerificationOutcome{Verified: false, ErrorCodes: []string{"network-error"}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("challenge verification service returned non-OK status", "status", resp.StatusCode)
		return models.VerificationOutcome{Verified: false}
	}

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Warn("challenge verification response malformed", "error", err)
		return models.VerificationOutcome{Verified: false}
	}

	if !result.Success {
		slog.Info("challenge verification rejected token", "error_codes", result.ErrorCodes)
	}

	return models.VerificationOutcome{
		Verified:   result.Success,
		ErrorCodes: result.ErrorCodes,
	}
}
