package services

import (
	"fmt"
	"strconv"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/services/kafka"

	gomail "gopkg.in/gomail.v2"
)

// SendEmail queues an email.send event on the emails topic. Delivery
// happens in the Kafka consumer so the caller never blocks on SMTP.
func SendEmail(to, subject, body string, attachment ...string) error {
	evt := map[string]interface{}{
		"event":   "email.send",
		"to":      to,
		"subject": subject,
		"body":    body,
	}
	if len(attachment) > 0 {
		evt["attachment"] = attachment[0]
	}
	return kafka.Publish("emails", to, evt)
}

// SendEmailDirect sends email directly via SMTP.
// Called by the Kafka consumer after receiving an email.send event.
func SendEmailDirect(to, subject, body string, attachment ...string) error {
	m := gomail.NewMessage()

	from := config.AppConfig.EmailFrom
	if from == "" {
		from = config.AppConfig.SMTPUser
	}
	if from == "" {
		return fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}

	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if len(attachment) > 0 && attachment[0] != "" {
		m.Attach(attachment[0])
	}

	host := config.AppConfig.SMTPHost
	port := 587
	if p := config.AppConfig.SMTPPort; p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	if config.AppConfig.SMTPUser == "" || config.AppConfig.SMTPPass == "" {
		return fmt.Errorf("smtp credentials not configured (set SMTP_USER and SMTP_PASS)")
	}

	d := gomail.NewDialer(host, port, config.AppConfig.SMTPUser, config.AppConfig.SMTPPass)

	if err := d.DialAndSend(m); err != nil {
		logger.Error("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent to %s", to)
	return nil
}
