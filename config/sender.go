package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// InitSMTPDialer builds the SMTP dialer used by the email sender and returns the sender address.
func InitSMTPDialer() (*gomail.Dialer, *string, error) {
	emailSender, err := getSender()
	if err != nil {
		return nil, nil, err
	}

	emailPassword, err := getPassword()
	if err != nil {
		return nil, nil, err
	}

	smtpHost, err := getHost()
	if err != nil {
		return nil, nil, err
	}

	smtpPort, err := getSMTPPort()
	if err != nil {
		return nil, nil, err
	}

	dialer := gomail.NewDialer(*smtpHost, smtpPort, *emailSender, *emailPassword)
	if os.Getenv("SMTP_INSECURE_SKIP_VERIFY") == "true" {
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: *smtpHost}
	}

	GetLogrusInstance().WithField("host", *smtpHost).Info("SMTP initialized")
	return dialer, emailSender, nil
}

func getSender() (*string, error) {
	sender := os.Getenv("EMAIL_SENDER")
	if sender == "" {
		return nil, fmt.Errorf("email sender invalid, value : %s", sender)
	}
	return &sender, nil
}

func getHost() (*string, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("smtp value invalid, value : %s", host)
	}
	return &host, nil
}

func getPassword() (*string, error) {
	pass := os.Getenv("EMAIL_SENDER_PASSWORD")
	if pass == "" {
		return nil, fmt.Errorf("email password invalid, value : %s", pass)
	}
	return &pass, nil
}

func getSMTPPort() (int, error) {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		return 0, fmt.Errorf("smtp port invalid, value : %s", port)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0, fmt.Errorf("smtp port invalid, value : %s", port)
	}
	return p, nil
}
