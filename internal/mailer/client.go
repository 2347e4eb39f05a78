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

// Package mailer sends transactional email through the provider's HTTP API.
// There is no queueing and no retry: dispatch is fire-and-confirm within the
// request lifecycle, and the caller decides what a failure means.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bcem/intake/internal/models"
)

// ErrUnconfigured is returned when no provider API key is present. Unlike the
// challenge verifier there is no safe fallback for missing email
// infrastructure, so callers surface this loudly.
var ErrUnconfigured = errors.New("email provider API key not configured")

// DefaultAPIURL is the transactional email provider's send endpoint.
const DefaultAPIURL = "https://api.resend.com/emails"

// sendTimeout bounds a single dispatch call.
const sendTimeout = 10 * time.Second

// Sender dispatches a single outbound email.
type Sender interface {
	Send(ctx context.Context, env models.Envelope) error
}

// Client sends email through the provider's JSON API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a provider client. An empty apiURL selects the default
// endpoint. An empty apiKey produces a client whose Send always returns
// ErrUnconfigured.
func NewClient(apiKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: sendTimeout,
		},
	}
}

// Configured reports whether a provider API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// sendRequest mirrors the provider's send payload.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send dispatches one email. A non-2xx provider response is an error; the
// provider body is never propagated past the log line.
func (c *Client) Send(ctx context.Context, env models.Envelope) error {
	if !c.Configured() {
		return ErrUnconfigured
	}

	payload := sendRequest{
		From:    env.From,
		To:      []string{env.To},
		ReplyTo: env.ReplyTo,
		Subject: env.Subject,
		HTML:    env.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the body itself stays internal.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email provider returned HTTP %d", resp.StatusCode)
	}

	return nil
}
