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

// Package models defines the data structures shared across the intake gateway.
package models

// SubmissionRequest is a contact-form submission as received from the public
// marketing site. It is constructed once per HTTP request, treated as
// immutable, and discarded when the pipeline finishes. Nothing is persisted.
type SubmissionRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	ChallengeToken string `json:"challengeToken,omitempty"`
}

// WaitlistRequest is a waitlist signup from the public site. It runs through
// the same validation / rate-limit / challenge / notification pipeline as a
// contact submission.
type WaitlistRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	ChallengeToken string `json:"challengeToken,omitempty"`
}

// VerificationOutcome is the result of the challenge verifier stage. It is
// never persisted; it only decides whether the pipeline proceeds and whether
// the acknowledgment email may be sent.
type VerificationOutcome struct {
	Verified   bool
	ErrorCodes []string
}

// Envelope is a single outbound email ready for the transactional provider.
type Envelope struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}
