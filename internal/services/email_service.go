package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendRoomInvite(email, roomName, code string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Taskboard!")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. Create a room or join one with an
		invite code to start collaborating.</p>
	`, name)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendRoomInvite(email, roomName, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Invitation to board %q", roomName))

	body := fmt.Sprintf(`
		<h3>You have been invited to %s</h3>
		<p>Join with code: <strong>%s</strong></p>
	`, roomName, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send room invite: %w", err)
	}
	return nil
}
