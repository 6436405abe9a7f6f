package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

const sendTimeout = 10 * time.Second

type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendMailer {
	return &MailerSendMailer{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (m *MailerSendMailer) SendLoginCode(ctx context.Context, toEmail, code string) error {
	html := fmt.Sprintf(`
		<h2>Login verification</h2>
		<p>Please use the following code to access your account:</p>
		<h1 style="font-size: 32px; letter-spacing: 5px;">%s</h1>
		<p>This code expires in 10 minutes.</p>
		<p>If you didn't try to log in, you can ignore this email.</p>
	`, code)
	text := fmt.Sprintf("Your security code is: %s\n\nThis code expires in 10 minutes.", code)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject("Your login code")
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
