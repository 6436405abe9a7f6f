package mailer

import "context"

// Mailer delivers one-time login codes out of band. Callers treat
// delivery as best effort: a stored code with a failed send is still a
// stored code.
type Mailer interface {
	SendLoginCode(ctx context.Context, toEmail, code string) error
}
