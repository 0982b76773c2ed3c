package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"
	"time"

	"github.com/disnaker/sipelan/internal/shared/config"
)

// MockEmailProvider is a mock email provider for testing
type MockEmailProvider struct {
	mu         sync.RWMutex
	sent       []*Notification
	failOnSend bool
	sendDelay  time.Duration
}

// NewMockEmailProvider creates a new mock email provider
func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

// Send records the notification (mock implementation)
func (p *MockEmailProvider) Send(ctx context.Context, n *Notification) error {
	if p.sendDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.sendDelay):
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failOnSend {
		return fmt.Errorf("mock send failure")
	}

	p.sent = append(p.sent, n)
	return nil
}

// SetFailOnSend sets whether Send should fail
func (p *MockEmailProvider) SetFailOnSend(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOnSend = fail
}

// SetSendDelay sets artificial delay for Send
func (p *MockEmailProvider) SetSendDelay(delay time.Duration) {
	p.sendDelay = delay
}

// GetSentNotifications returns all sent notifications
func (p *MockEmailProvider) GetSentNotifications() []*Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*Notification, len(p.sent))
	copy(result, p.sent)
	return result
}

// ConsoleEmailProvider prints emails to stdout. Used in development when
// no SMTP relay is configured.
type ConsoleEmailProvider struct{}

// NewConsoleEmailProvider creates a console email provider
func NewConsoleEmailProvider() *ConsoleEmailProvider {
	return &ConsoleEmailProvider{}
}

// Send prints the email to stdout
func (p *ConsoleEmailProvider) Send(ctx context.Context, n *Notification) error {
	fmt.Printf("[EMAIL] To: %s <%s>\nSubject: %s\n%s\n", n.RecipientName, n.Recipient, n.Subject, n.Body)
	return nil
}

// SMTPProvider delivers email through a plain SMTP relay.
type SMTPProvider struct {
	cfg config.SMTPConfig
}

// NewSMTPProvider creates an SMTP email provider
func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Send sends the email via SMTP
func (p *SMTPProvider) Send(ctx context.Context, n *Notification) error {
	msg := []byte("From: " + p.cfg.From + "\r\n" +
		"To: " + n.Recipient + "\r\n" +
		"Subject: " + n.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		n.Body + "\r\n")

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(p.cfg.Addr(), auth, p.cfg.From, []string{n.Recipient}, msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	}
}

// ProviderFromConfig picks SMTP when a relay host is configured, console
// otherwise.
func ProviderFromConfig(cfg config.SMTPConfig) EmailProvider {
	if cfg.Host != "" {
		return NewSMTPProvider(cfg)
	}
	return NewConsoleEmailProvider()
}
