package mailer

import (
	"context"
	"log"
)

// DevMailer writes codes to the server log instead of sending mail.
// Used when no mail provider is configured.
type DevMailer struct {
	log *log.Logger
}

func NewDevMailer(logger *log.Logger) *DevMailer {
	return &DevMailer{log: logger}
}

func (d *DevMailer) SendLoginCode(_ context.Context, toEmail, code string) error {
	d.log.Printf("[dev mail] login code for %s: %s", toEmail, code)
	return nil
}
