// Package mail delivers account emails for multiplayer mode.
package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/config"
)

// Mailer delivers account emails to players. Login tokens are only ever
// delivered by email; they are never echoed back through the tool surface.
type Mailer interface {
	// SendWelcome delivers the registration email carrying the login token.
	SendWelcome(ctx context.Context, toEmail, username, token string) error
	// SendTokenRefresh delivers a replacement login token.
	SendTokenRefresh(ctx context.Context, toEmail, username, token string) error
}

const welcomeSubject = "Welcome to Integration Quest!"

const welcomeBody = `Welcome, %s!

Your Integration Quest account has been created.

═══════════════════════════════════════════
YOUR LOGIN TOKEN (keep this safe!):
%s
═══════════════════════════════════════════

Use this token to authenticate when playing:
  login("%s", "%s")

This token is your password. Keep it safe!
If you ever forget it, use refresh_token("%s") to get a new one.

Now venture forth, Integration Hero, and may your APIs always return 200 OK!

---
Integration Quest
Connect the disconnected. Automate the manual. Defeat the bugs.
`

const refreshSubject = "Integration Quest - New Login Token"

const refreshBody = `Hi %s,

Your login token has been refreshed.

═══════════════════════════════════════════
YOUR NEW LOGIN TOKEN:
%s
═══════════════════════════════════════════

Your old token no longer works.

To login, use:
  login("%s", "%s")

Happy questing!

---
Integration Quest
`

// sender is the slice of the SendGrid client used by SendGrid, kept narrow so
// tests can substitute a capture.
type sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGrid delivers email through the SendGrid v3 API with plain-text bodies.
type SendGrid struct {
	client   sender
	fromAddr string
	fromName string
	logger   *zap.Logger
}

// NewSendGrid creates a SendGrid-backed Mailer from the given configuration.
//
// Precondition: cfg.APIKey must be a valid SendGrid API key.
func NewSendGrid(cfg config.EmailConfig, logger *zap.Logger) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		fromAddr: cfg.FromAddress,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// SendWelcome delivers the registration email carrying the login token.
//
// Postcondition: Returns nil only if SendGrid accepted the message.
func (s *SendGrid) SendWelcome(ctx context.Context, toEmail, username, token string) error {
	body := fmt.Sprintf(welcomeBody, username, token, toEmail, token, toEmail)
	return s.send(ctx, toEmail, username, welcomeSubject, body)
}

// SendTokenRefresh delivers a replacement login token.
//
// Postcondition: Returns nil only if SendGrid accepted the message.
func (s *SendGrid) SendTokenRefresh(ctx context.Context, toEmail, username, token string) error {
	body := fmt.Sprintf(refreshBody, username, token, toEmail, token)
	return s.send(ctx, toEmail, username, refreshSubject, body)
}

func (s *SendGrid) send(ctx context.Context, toEmail, username, subject, body string) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(s.fromName, s.fromAddr))
	m.Subject = subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(username, toEmail))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode != 200 && resp.StatusCode != 201 && resp.StatusCode != 202 {
		return fmt.Errorf("sending email: sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Info("email sent",
		zap.String("to", toEmail),
		zap.String("subject", subject))
	return nil
}

// Nop is the Mailer used when email delivery is disabled. It logs the token at
// Info so an operator running without SendGrid can still hand it to the player.
type Nop struct {
	logger *zap.Logger
}

// NewNop creates a logging no-op Mailer.
func NewNop(logger *zap.Logger) *Nop {
	return &Nop{logger: logger}
}

// SendWelcome logs the token instead of delivering it.
func (n *Nop) SendWelcome(ctx context.Context, toEmail, username, token string) error {
	n.logger.Info("email delivery disabled, welcome token not sent",
		zap.String("to", toEmail),
		zap.String("username", username),
		zap.String("token", token))
	return nil
}

// SendTokenRefresh logs the token instead of delivering it.
func (n *Nop) SendTokenRefresh(ctx context.Context, toEmail, username, token string) error {
	n.logger.Info("email delivery disabled, refreshed token not sent",
		zap.String("to", toEmail),
		zap.String("username", username),
		zap.String("token", token))
	return nil
}
