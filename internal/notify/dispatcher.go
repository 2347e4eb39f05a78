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

// Package notify builds and dispatches the outbound notifications for
// accepted submissions.
//
// Two emails can result from one submission: an internal notification to the
// operator (always, once validation and rate limiting pass) and an
// acknowledgment to the submitter (only when the challenge outcome is
// verified). The conditional is the gateway's core anti-abuse rule: an
// unverified submitter must never receive auto-generated email, because that
// is exactly the capability a spammer would use to blast arbitrary addresses
// through the acknowledgment channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bcem/intake/internal/mailer"
	"github.com/bcem/intake/internal/models"
)

// Dispatcher turns validated submissions into provider sends.
type Dispatcher struct {
	sender   mailer.Sender
	from     string
	notifyTo string
}

// NewDispatcher creates a dispatcher sending from the given address, with
// internal notifications addressed to notifyTo.
func NewDispatcher(sender mailer.Sender, from, notifyTo string) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		from:     from,
		notifyTo: notifyTo,
	}
}

// DispatchContact sends the internal notification for a contact submission
// and, for verified submitters, the acknowledgment. An internal-notification
// failure fails the whole dispatch; an acknowledgment failure is logged and
// swallowed — the acknowledgment is a courtesy, not a guarantee.
func (d *Dispatcher) DispatchContact(ctx context.Context, sub *models.SubmissionRequest, outcome models.VerificationOutcome) error {
	html, err := renderContactNotification(sub)
	if err != nil {
		return fmt.Errorf("render contact notification: %w", err)
	}

	env := models.Envelope{
		From:    d.from,
		To:      d.notifyTo,
		ReplyTo: sub.Email,
		Subject: "New contact submission: " + sub.Subject,
		HTML:    html,
	}
	if err := d.sender.Send(ctx, env); err != nil {
		return fmt.Errorf("send internal notification: %w", err)
	}

	if !outcome.Verified {
		slog.Info("skipping acknowledgment for unverified submitter")
		return nil
	}

	d.sendAck(ctx, sub.Email, "We received your message", renderContactAck, sub.Name)
	return nil
}

// DispatchWaitlist is the waitlist counterpart of DispatchContact, with the
// same failure policy.
func (d *Dispatcher) DispatchWaitlist(ctx context.Context, req *models.WaitlistRequest, outcome models.VerificationOutcome) error {
	html, err := renderWaitlistNotification(req)
	if err != nil {
		return fmt.Errorf("render waitlist notification: %w", err)
	}

	env := models.Envelope{
		From:    d.from,
		To:      d.notifyTo,
		ReplyTo: req.Email,
		Subject: "New waitlist signup",
		HTML:    html,
	}
	if err := d.sender.Send(ctx, env); err != nil {
		return fmt.Errorf("send internal notification: %w", err)
	}

	if !outcome.Verified {
		slog.Info("skipping acknowledgment for unverified submitter")
		return nil
	}

	d.sendAck(ctx, req.Email, "You're on the list", renderWaitlistAck, req.Name)
	return nil
}

// sendAck renders and sends the best-effort acknowledgment. Failures are
// logged, never surfaced.
func (d *Dispatcher) sendAck(ctx context.Context, to, subject string, render func(name string) (string, error), name string) {
	html, err := render(name)
	if err != nil {
		slog.Error("render acknowledgment failed", "error", err)
		return
	}

	env := models.Envelope{
		From:    d.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
	if err := d.sender.Send(ctx, env); err != nil {
		slog.Error("acknowledgment send failed", "error", err)
	}
}
