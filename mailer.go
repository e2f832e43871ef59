package auth

import (
	"context"
	"fmt"
	"strings"
)

// Message is the notification payload handed to a Mailer
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// Mailer is the notification gateway. Implementations wrap whatever delivery
// transport the application uses; this package only needs
// accepted-for-delivery semantics, a nil error meaning accepted.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to the Mailer interface
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// buildVerificationMessage renders the email carrying the validation link.
// The link path is part of the contract with the request layer: it routes
// back into Auther.ValidateEmail with the token as the last segment.
func buildVerificationMessage(baseURL, email, token string) Message {
	link := fmt.Sprintf("%s/auth/validate-email/%s", strings.TrimRight(baseURL, "/"), token)

	html := fmt.Sprintf(`<h1>Validate your email</h1>
<p>Click on the following link to validate your email</p>
<a href="%s">Validate your email: %s</a>`, link, email)

	return Message{
		To:       email,
		Subject:  "validate your email",
		HTMLBody: html,
	}
}
