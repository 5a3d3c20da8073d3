package services

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"
)

const defaultSMTPAddr = "smtp.gmail.com:465"

// SendEmail delivers a plain-text message over SMTP with implicit TLS.
// Credentials come from EMAIL_USER / EMAIL_PASS; SMTP_ADDR overrides the
// server address.
func SendEmail(to, subject, body string) error {
	addr := os.Getenv("SMTP_ADDR")

	if addr == "" {
		addr = defaultSMTPAddr
	}

	from := os.Getenv("EMAIL_USER")
	password := os.Getenv("EMAIL_PASS")

	host, _, err := net.SplitHostPort(addr)

	if err != nil {
		return fmt.Errorf("invalid SMTP address %q: %w", addr, err)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})

	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, host)

	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}

	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", from, password, host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	if err := client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()

	if err != nil {
		return err
	}

	message := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if _, err := writer.Write([]byte(message)); err != nil {
		writer.Close()
		return err
	}

	if err := writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// SendPasswordResetEmail mails a recovery code to the user.
func SendPasswordResetEmail(to, code string) error {
	body := fmt.Sprintf("Tu código de recuperación es: %s", code)
	return SendEmail(to, "Recuperación de contraseña", body)
}
