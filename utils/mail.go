package utils

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendMail sends one transactional email through SendGrid. The dispatcher is
// fire-and-forget: the returned bool only reflects whether SendGrid accepted
// the message, there is no delivery callback.
func SendMail(to string, subject string, html string) (bool, error) {
	fromName := os.Getenv("FROM_NAME")
	if fromName == "" {
		fromName = "Community Hub"
	}
	from := mail.NewEmail(fromName, os.Getenv("FROM_EMAIL"))
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", html)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return false, err
	}
	if response.StatusCode >= 400 {
		return false, fmt.Errorf("mail rejected with status %d: %s", response.StatusCode, response.Body)
	}
	return true, nil
}
