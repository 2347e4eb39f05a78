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

// Package validate statically validates intake submissions. It is a pure
// function layer: no network access, no shared state. Each check produces a
// distinct, reportable kind so the HTTP layer never falls back to a generic
// validation message.
package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/bcem/intake/internal/models"
)

const (
	maxNameLength    = 100
	maxSubjectLength = 200
	maxMessageLength = 5000
)

// Subjects is the fixed allow-list for the contact form subject field.
var Subjects = []string{
	"General Inquiry",
	"Bug Report",
	"Feature Request",
	"Business / Partnerships",
	"Other",
}

// Shape check only — deliverability is out of scope (no MX lookup, no
// external call).
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Kind discriminates validation failures.
type Kind string

const (
	MissingField   Kind = "missing_field"
	InvalidEmail   Kind = "invalid_email"
	FieldTooLong   Kind = "field_too_long"
	InvalidSubject Kind = "invalid_subject"
)

// Error reports a single validation failure with the field it refers to and
// a short message safe to echo to the client.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Contact validates a contact-form submission. Checks run in a fixed order:
// presence, email shape, length bounds, subject allow-list. The first failure
// wins.
func Contact(req *models.SubmissionRequest) *Error {
	required := []struct {
		field, value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"subject", req.Subject},
		{"message", req.Message},
	}
	for _, f := range required {
		if f.value == "" {
			return &Error{Kind: MissingField, Field: f.field, Message: f.field + " is required"}
		}
	}

	if !emailPattern.MatchString(req.Email) {
		return &Error{Kind: InvalidEmail, Field: "email", Message: "email address is not valid"}
	}

	if err := checkLength("name", req.Name, maxNameLength); err != nil {
		return err
	}
	if err := checkLength("subject", req.Subject, maxSubjectLength); err != nil {
		return err
	}
	if err := checkLength("message", req.Message, maxMessageLength); err != nil {
		return err
	}

	if !allowedSubject(req.Subject) {
		return &Error{Kind: InvalidSubject, Field: "subject", Message: "subject is not a recognised option"}
	}

	return nil
}

// Waitlist validates a waitlist signup. Only the email is required; the name
// is optional but still length-bounded when present.
func Waitlist(req *models.WaitlistRequest) *Error {
	if req.Email == "" {
		return &Error{Kind: MissingField, Field: "email", Message: "email is required"}
	}
	if !emailPattern.MatchString(req.Email) {
		return &Error{Kind: InvalidEmail, Field: "email", Message: "email address is not valid"}
	}
	if req.Name != "" {
		if err := checkLength("name", req.Name, maxNameLength); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(field, value string, max int) *Error {
	if utf8.RuneCountInString(value) > max {
		return &Error{
			Kind:    FieldTooLong,
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, max),
		}
	}
	return nil
}

func allowedSubject(subject string) bool {
	for _, s := range Subjects {
		if subject == s {
			return true
		}
	}
	return false
}
