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
	"html/template"
	"strings"

	"github.com/bcem/intake/internal/models"
)

// Email bodies are rendered with html/template so every user-supplied field
// is escaped as untrusted HTML content.

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2 style="margin-bottom: 4px;">New contact submission</h2>
  <table cellpadding="4" cellspacing="0">
    <tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
    <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
    <tr><td><strong>Subject</strong></td><td>{{.Subject}}</td></tr>
  </table>
  <h3 style="margin-bottom: 4px;">Message</h3>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
</body>
</html>
`))

var contactAckTmpl = template.Must(template.New("contact_ack").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <p>Hi {{.Name}},</p>
  <p>Thanks for reaching out — we received your message and will get back to
  you as soon as we can. No need to do anything else.</p>
  <p>If you didn't submit this, you can safely ignore this email.</p>
</body>
</html>
`))

var waitlistNotificationTmpl = template.Must(template.New("waitlist_notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2 style="margin-bottom: 4px;">New waitlist signup</h2>
  <table cellpadding="4" cellspacing="0">
    <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
    {{if .Name}}<tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>{{end}}
  </table>
</body>
</html>
`))

var waitlistAckTmpl = template.Must(template.New("waitlist_ack").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <p>Hi{{if .Name}} {{.Name}}{{end}},</p>
  <p>You're on the waitlist. We'll email you as soon as there's news to
  share.</p>
  <p>If you didn't sign up, you can safely ignore this email.</p>
</body>
</html>
`))

func renderContactNotification(sub *models.SubmissionRequest) (string, error) {
	var buf strings.Builder
	if err := contactNotificationTmpl.Execute(&buf, sub); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderContactAck(name string) (string, error) {
	var buf strings.Builder
	if err := contactAckTmpl.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderWaitlistNotification(req *models.WaitlistRequest) (string, error) {
	var buf strings.Builder
	if err := waitlistNotificationTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderWaitlistAck(name string) (string, error) {
	var buf strings.Builder
	if err := waitlistAckTmpl.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
