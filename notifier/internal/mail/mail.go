package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string `yaml:"host" envconfig:"SMTP_HOST" default:"localhost"`
	Port     string `yaml:"port" envconfig:"SMTP_PORT" default:"587"`
	From     string `yaml:"from" envconfig:"SMTP_FROM" default:"no-reply@library.local"`
	Username string `yaml:"username" envconfig:"SMTP_USERNAME"`
	Password string `yaml:"password" envconfig:"SMTP_PASSWORD"`
}

type Sender interface {
	Send(to, subject, body string) error
}

func NewSender(cfg Config) Sender {
	return &smtpSender{cfg: cfg}
}

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
