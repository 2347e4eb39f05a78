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

// Package metrics defines the Prometheus collectors for the intake gateway
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for SubmissionsTotal.
const (
	OutcomeAccepted        = "accepted"
	OutcomeInvalid         = "invalid"
	OutcomeRateLimited     = "rate_limited"
	OutcomeChallengeFailed = "challenge_failed"
	OutcomeDispatchFailed  = "dispatch_failed"
	OutcomeUnconfigured    = "unconfigured"
)

// Metrics holds all Prometheus collectors for the gateway.
type Metrics struct {
	SubmissionsTotal       *prometheus.CounterVec
	ChallengeVerifySeconds prometheus.Histogram
	EmailSendSeconds       prometheus.Histogram
}

// New creates and registers the gateway metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Total intake submissions by form and pipeline outcome.",
			},
			[]string{"form", "outcome"},
		),
		ChallengeVerifySeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_challenge_verify_seconds",
				Help:    "Challenge verification latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		EmailSendSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_email_send_seconds",
				Help:    "Notification dispatch latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.ChallengeVerifySeconds,
		m.EmailSendSeconds,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
