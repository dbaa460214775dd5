package service

import (
	"fmt"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"tutorflow_backend/internals/configs"
)

// Mailer é o contrato de envio de e-mail transacional. Falha de envio é
// logada e engolida pelos chamadores: nunca desfaz a operação principal.
type Mailer interface {
	Send(toName, toEmail, subject, htmlBody string) error
}

// NewMailerFromEnv escolhe Sendgrid quando há API key, senão console.
func NewMailerFromEnv() Mailer {
	if configs.SendgridAPIKey != "" {
		return &SendgridMailer{
			key:       configs.SendgridAPIKey,
			fromName:  "TutorFlow",
			fromEmail: configs.DefaultFromEmail,
		}
	}
	return &ConsoleMailer{}
}

type SendgridMailer struct {
	key       string
	fromName  string
	fromEmail string
}

func (m *SendgridMailer) Send(toName, toEmail, subject, htmlBody string) error {
	from := sgmail.NewEmail(m.fromName, m.fromEmail)
	to := sgmail.NewEmail(toName, toEmail)
	msg := sgmail.NewSingleEmail(from, "[TutorFlow] "+subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(m.key)
	resp, err := client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// ConsoleMailer: dev/teste: só loga.
type ConsoleMailer struct{}

func (m *ConsoleMailer) Send(toName, toEmail, subject, htmlBody string) error {
	log.Printf("[MAIL] to=%s <%s> subject=%q", toName, toEmail, subject)
	return nil
}
