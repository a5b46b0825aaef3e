// Package notify defines the outbound transactional-email contract. The
// engine hands a recipient, a category, and a payload to a Notifier and does
// not depend on templating or delivery mechanics.
package notify

import (
	"context"
)

// Category identifies one kind of transactional email.
type Category string

const (
	CategoryEmailVerification       Category = "emailVerification"
	CategoryPasswordReset           Category = "passwordReset"
	CategoryEmailChanged            Category = "emailChanged"
	CategoryPasswordChanged         Category = "passwordChanged"
	CategoryEmailAndPasswordChanged Category = "emailAndPasswordChanged"
)

// Payload carries the value to interpolate into the email template: a token
// for verification/reset mails, a replacement value for change notifications.
type Payload struct {
	Token    string `json:"token,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// Notifier sends a categorized transactional email. Implementations return an
// error on delivery failure; callers decide whether that failure is fatal to
// the surrounding operation.
type Notifier interface {
	Send(ctx context.Context, recipient string, category Category, payload Payload) error
}
