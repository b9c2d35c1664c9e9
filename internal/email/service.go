package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jeevanrakshak/donor-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendRequestAccepted(ctx context.Context, to string, patientName, donorName string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type service struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

func NewService(cfg config.EmailConfig) Service {
	return &service{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		enabled: cfg.Enabled,
	}
}

func (s *service) SendWelcome(ctx context.Context, to string, name string) error {
	subject := "Welcome to Jeevan-Rakshak"
	content := fmt.Sprintf(
		"Hi %s,<br><br>Your donor profile is live. You will be notified when someone near you needs blood.<br><br>Thank you for registering.",
		name,
	)
	return s.send(ctx, to, subject, content)
}

func (s *service) SendRequestAccepted(ctx context.Context, to string, patientName, donorName string) error {
	subject := "A donor accepted your blood request"
	content := fmt.Sprintf(
		"Good news: %s has accepted your request for %s. They will be in touch shortly.",
		donorName, patientName,
	)
	return s.send(ctx, to, subject, content)
}

func (s *service) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *service) send(_ context.Context, to, subject, content string) error {
	if !s.enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
