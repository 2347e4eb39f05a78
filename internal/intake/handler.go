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

// Package intake handles untrusted, unauthenticated submissions from the
// public marketing site. Each request runs the pipeline
// validator → rate limiter → challenge verifier → notification dispatcher;
// any stage may short-circuit with its own HTTP contract, and only a
// submission clearing all four results in email dispatch and a 200.
package intake

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bcem/intake/internal/challenge"
	"github.com/bcem/intake/internal/mailer"
	"github.com/bcem/intake/internal/metrics"
	"github.com/bcem/intake/internal/models"
	"github.com/bcem/intake/internal/notify"
	"github.com/bcem/intake/internal/ratelimit"
	"github.com/bcem/intake/internal/validate"
)

// Handler serves the public submission endpoints.
type Handler struct {
	limiter    ratelimit.Limiter
	verifier   *challenge.Verifier
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
}

// NewHandler creates a submission handler with its pipeline collaborators.
func NewHandler(limiter ratelimit.Limiter, verifier *challenge.Verifier, dispatcher *notify.Dispatcher, m *metrics.Metrics) *Handler {
	return &Handler{
		limiter:    limiter,
		verifier:   verifier,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// ServeContact handles POST /api/contact.
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.SubmissionsTotal.WithLabelValues("contact", metrics.OutcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validate.Contact(&req); verr != nil {
		h.metrics.SubmissionsTotal.WithLabelValues("contact", metrics.OutcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	h.run(w, r, "contact", req.ChallengeToken,
		func(outcome models.VerificationOutcome) error {
			return h.dispatcher.DispatchContact(r.Context(), &req, outcome)
		},
		"Your message has been sent.",
	)
}

// ServeWaitlist handles POST /api/waitlist.
func (h *Handler) ServeWaitlist(w http.ResponseWriter, r *http.Request) {
	var req models.WaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.SubmissionsTotal.WithLabelValues("waitlist", metrics.OutcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validate.Waitlist(&req); verr != nil {
		h.metrics.SubmissionsTotal.WithLabelValues("waitlist", metrics.OutcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	h.run(w, r, "waitlist", req.ChallengeToken,
		func(outcome models.VerificationOutcome) error {
			return h.dispatcher.DispatchWaitlist(r.Context(), &req, outcome)
		},
		"You're on the waitlist.",
	)
}

// ServeHealth handles GET /health.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// run executes the rate-limit, challenge, and dispatch stages shared by both
// forms, once the form-specific validation has passed.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, form, token string, dispatch func(models.VerificationOutcome) error, successMsg string) {
	ctx := r.Context()
	submissionID := uuid.NewString()
	origin := OriginKey(r)
	log := slog.With("form", form, "submission_id", submissionID, "origin", origin)

	allowed, err := h.limiter.Allow(ctx, origin, time.Now())
	if err != nil {
		// The limiter is an abuse control, not critical infrastructure:
		// if its backing store is down, let traffic through.
		log.Warn("rate limiter unavailable, admitting request", "error", err)
		allowed = true
	}
	if !allowed {
		h.metrics.SubmissionsTotal.WithLabelValues(form, metrics.OutcomeRateLimited).Inc()
		log.Info("submission rate limited")
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	start := time.Now()
	outcome := h.verifier.Verify(ctx, token)
	h.metrics.ChallengeVerifySeconds.Observe(time.Since(start).Seconds())

	if !outcome.Verified {
		h.metrics.SubmissionsTotal.WithLabelValues(form, metrics.OutcomeChallengeFailed).Inc()
		log.Info("challenge verification failed", "error_codes", outcome.ErrorCodes)
		writeError(w, http.StatusUnprocessableEntity, "Verification failed. Please try again.")
		return
	}

	start = time.Now()
	err = dispatch(outcome)
	h.metrics.EmailSendSeconds.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, mailer.ErrUnconfigured):
		h.metrics.SubmissionsTotal.WithLabelValues(form, metrics.OutcomeUnconfigured).Inc()
		log.Error("email provider not configured, rejecting submission")
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again later.")
		return
	case err != nil:
		h.metrics.SubmissionsTotal.WithLabelValues(form, metrics.OutcomeDispatchFailed).Inc()
		log.Error("notification dispatch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	h.metrics.SubmissionsTotal.WithLabelValues(form, metrics.OutcomeAccepted).Inc()
	log.Info("submission accepted", "verified", outcome.Verified)
	writeJSON(w, http.StatusOK, map[string]string{"message": successMsg})
}

// OriginKey derives the rate-limit bucket key for a request. The first
// comma-separated value of the forwarded header is authoritative; requests
// without one share the "unknown" bucket.
func OriginKey(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return "unknown"
	}
	first, _, _ := strings.Cut(fwd, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return "unknown"
	}
	return first
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
