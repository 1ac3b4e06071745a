package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"quietblock-api/core/config"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type EmailMessage struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

// GetEmailConfig builds an EmailConfig from the loaded application config.
func GetEmailConfig() EmailConfig {
	cfg, ok := config.GetSafe()
	if !ok {
		return EmailConfig{}
	}
	return EmailConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	}
}

// SendEmailTLS sends a message over an implicit-TLS SMTP connection
// (typically port 465).
func SendEmailTLS(conf EmailConfig, msg EmailMessage) error {
	if conf.Host == "" || conf.From == "" {
		return fmt.Errorf("smtp is not configured")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	addr := fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: conf.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, conf.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if conf.Username != "" {
		auth := smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(conf.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	contentType := "text/plain; charset=\"UTF-8\""
	if msg.IsHTML {
		contentType = "text/html; charset=\"UTF-8\""
	}

	from := conf.From
	if conf.FromName != "" {
		from = fmt.Sprintf("%s <%s>", conf.FromName, conf.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "\r\n%s\r\n", msg.Body)

	if _, err := w.Write([]byte(b.String())); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}
