package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendMail delivers an HTML email through the SMTP relay configured by
// SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and SMTP_FROM
func SendMail(to string, subject string, html string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	if host == "" || port == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html + "\r\n")

	auth := smtp.PlainAuth("", user, password, host)
	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}
