package repository

import (
	"context"
	"fmt"

	"trainingportal/domain"

	"gopkg.in/gomail.v2"
)

type senderRepository struct {
	dialer      *gomail.Dialer
	emailSender string
	appName     string
}

func NewSenderRepository(dialer *gomail.Dialer, emailSender, appName string) domain.EmailSender {
	return &senderRepository{
		dialer:      dialer,
		emailSender: emailSender,
		appName:     appName,
	}
}

// Send delivers one plain-text message. A send already handed to the dialer cannot be cancelled.
func (m *senderRepository) Send(ctx context.Context, msg domain.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetAddressHeader("From", m.emailSender, m.appName)
	mail.SetAddressHeader("To", msg.To, msg.ToName)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type disabledSender struct {
	reason error
}

// NewDisabledSender fails every send so attempts still land in the email log as FAILED.
func NewDisabledSender(reason error) domain.EmailSender {
	return &disabledSender{reason: reason}
}

func (d *disabledSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	return fmt.Errorf("smtp not configured: %w", d.reason)
}
