package services

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
	"gopkg.in/gomail.v2"
)

// Sender is implemented by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	from   string
	sender Sender
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func NewEmailServiceWithSender(from string, sender Sender) *EmailService {
	return &EmailService{from: from, sender: sender}
}

func (s *EmailService) SendEmail(to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("missing recipient")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "send mail to %s", to)
	}
	return nil
}

type MockEmailService struct {
	mu   sync.Mutex
	Sent []MockEmail
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (m *MockEmailService) SendEmail(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, MockEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *MockEmailService) Emails() []MockEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockEmail, len(m.Sent))
	copy(out, m.Sent)
	return out
}
