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

package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bcem/intake/internal/models"
)

// mockSender records every envelope and can be told to fail specific sends.
type mockSender struct {
	mu        sync.Mutex
	sent      []models.Envelope
	failTo    string // fail sends addressed to this recipient
	failAll   bool
	failError error
}

func (m *mockSender) Send(_ context.Context, env models.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || (m.failTo != "" && env.To == m.failTo) {
		if m.failError != nil {
			return m.failError
		}
		return errors.New("send failed")
	}
	m.sent = append(m.sent, env)
	return nil
}

func (m *mockSender) envelopes() []models.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Envelope(nil), m.sent...)
}

func testSubmission() models.SubmissionRequest {
	return models.SubmissionRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "General Inquiry",
		Message: "Hello",
	}
}

// TestDispatchContact_Verified verifies a verified submission produces the
// internal notification plus the acknowledgment, correctly addressed.
func TestDispatchContact_Verified(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
	sub := testSubmission()

	err := d.DispatchContact(context.Background(), &sub, models.VerificationOutcome{Verified: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.envelopes()
	if len(sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sent))
	}

	internal := sent[0]
	if internal.To != "ops@example.com" {
		t.Errorf("internal notification to = %q, want ops@example.com", internal.To)
	}
	if internal.ReplyTo != "jane@example.com" {
		t.Errorf("internal notification reply-to = %q, want submitter address", internal.ReplyTo)
	}
	if !strings.Contains(internal.Subject, "General Inquiry") {
		t.Errorf("internal subject = %q, want submission subject included", internal.Subject)
	}

	ack := sent[1]
	if ack.To != "jane@example.com" {
		t.Errorf("acknowledgment to = %q, want submitter address", ack.To)
	}
}

// TestDispatchContact_UnverifiedNeverAcks verifies the anti-abuse rule: an
// unverified submitter gets no acknowledgment while the operator still gets
// exactly one internal notification.
func TestDispatchContact_UnverifiedNeverAcks(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
	sub := testSubmission()

	err := d.DispatchContact(context.Background(), &sub, models.VerificationOutcome{Verified: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.envelopes()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want exactly 1", len(sent))
	}
	if sent[0].To != "ops@example.com" {
		t.Errorf("the one email went to %q, want the operator", sent[0].To)
	}
}

// TestDispatchContact_InternalFailureFailsDispatch verifies a failed internal
// notification fails the whole operation and suppresses the acknowledgment.
func TestDispatchContact_InternalFailureFailsDispatch(t *testing.T) {
	sender := &mockSender{failTo: "ops@example.com"}
	d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
	sub := testSubmission()

	err := d.DispatchContact(context.Background(), &sub, models.VerificationOutcome{Verified: true})
	if err == nil {
		t.Fatal("expected error when internal notification fails")
	}
	if len(sender.envelopes()) != 0 {
		t.Error("acknowledgment sent despite internal notification failure")
	}
}

// TestDispatchContact_AckFailureIsSwallowed verifies acknowledgment failures
// do not fail the dispatch.
func TestDispatchContact_AckFailureIsSwallowed(t *testing.T) {
	sender := &mockSender{failTo: "jane@example.com"}
	d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
	sub := testSubmission()

	err := d.DispatchContact(context.Background(), &sub, models.VerificationOutcome{Verified: true})
	if err != nil {
		t.Fatalf("ack failure surfaced as dispatch error: %v", err)
	}
	if len(sender.envelopes()) != 1 {
		t.Errorf("sent %d emails, want 1 (internal only)", len(sender.envelopes()))
	}
}

// TestDispatchContact_EscapesUserContent verifies user-supplied markup is
// rendered as entities, never as raw HTML.
func TestDispatchContact_EscapesUserContent(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
	sub := testSubmission()
	sub.Name = `Jane "The <b>Bold</b>" Doe`
	sub.Message = `<script>alert('pwned')</script> & more`

	err := d.DispatchContact(context.Background(), &sub, models.VerificationOutcome{Verified: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := sender.envelopes()[0].HTML
	if strings.Contains(html, "<script>") {
		t.Error("rendered body contains raw <script>")
	}
	if strings.Contains(html, "<b>Bold</b>") {
		t.Error("rendered body contains raw user markup")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("rendered body missing escaped script tag")
	}
	if !strings.Contains(html, "&amp; more") {
		t.Error("rendered body missing escaped ampersand")
	}
}

// TestDispatchWaitlist covers the waitlist counterpart: verified signups get
// the acknowledgment, unverified ones only notify the operator.
func TestDispatchWaitlist(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		sender := &mockSender{}
		d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
		req := models.WaitlistRequest{Email: "jane@example.com", Name: "Jane"}

		err := d.DispatchWaitlist(context.Background(), &req, models.VerificationOutcome{Verified: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sent := sender.envelopes()
		if len(sent) != 2 {
			t.Fatalf("sent %d emails, want 2", len(sent))
		}
		if sent[0].ReplyTo != "jane@example.com" {
			t.Errorf("internal reply-to = %q, want signup address", sent[0].ReplyTo)
		}
		if sent[1].To != "jane@example.com" {
			t.Errorf("acknowledgment to = %q, want signup address", sent[1].To)
		}
	})

	t.Run("unverified", func(t *testing.T) {
		sender := &mockSender{}
		d := NewDispatcher(sender, "Gateway <noreply@example.com>", "ops@example.com")
		req := models.WaitlistRequest{Email: "jane@example.com"}

		err := d.DispatchWaitlist(context.Background(), &req, models.VerificationOutcome{Verified: false})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sender.envelopes()) != 1 {
			t.Errorf("sent %d emails, want 1", len(sender.envelopes()))
		}
	})
}
