package services

import (
	"community-hub-server/models"
	"community-hub-server/utils"
	"fmt"
	"log"
	"os"
	"strings"
)

// sendMail is swapped out in tests.
var sendMail = utils.SendMail

// MailerService renders and dispatches the event invitation and rejection
// emails. One call per recipient; SendGrid gives no delivery callback, so a
// send either gets accepted or counts as failed, nothing in between.
type MailerService struct{}

func NewMailerService() *MailerService {
	return &MailerService{}
}

// BatchReport summarizes an invitation fan-out. Partial failure is expected
// and tolerated; the caller reports it as a warning, never an error.
type BatchReport struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// InvitationLink is the public RSVP URL for an event. The token in the query
// string is the whole credential.
func (ms *MailerService) InvitationLink(event *models.EventProposal) string {
	return strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/") + "/rsvp?token=" + event.InviteToken
}

// RenderInvitation builds the invitation email for an event. The venue must
// be preloaded on the event. Both the batch and the individual resend paths
// go through here so the template stays identical.
func (ms *MailerService) RenderInvitation(event *models.EventProposal) (subject, html string) {
	subject = fmt.Sprintf("You're invited: %s at %s", event.Name, event.Venue.Name)

	link := ms.InvitationLink(event)

	var b strings.Builder
	b.WriteString("<h2>" + event.Name + "</h2>")
	b.WriteString("<p><strong>When:</strong> " + utils.FormatEventDate(event.EventDate) +
		" at " + utils.FormatEventTime(event.EventDate) + "</p>")
	b.WriteString("<p><strong>Where:</strong> " + event.Venue.Name + ", " + event.Venue.Address + "</p>")
	b.WriteString("<p><strong>Organized by:</strong> " + event.CreatorName + "</p>")
	if event.Message != "" {
		b.WriteString("<blockquote>" + event.Message + "</blockquote>")
	}
	b.WriteString("<p>Please respond by " + utils.FormatEventDate(event.RSVPDeadline) + ".</p>")
	b.WriteString(`<p><a href="` + link + `">Click here to RSVP</a></p>`)

	return subject, b.String()
}

// SendInvitationBatch sends the invitation to every recipient individually.
// Failures are counted, not retried; the admin recovers stragglers through
// the manual resend path.
func (ms *MailerService) SendInvitationBatch(event *models.EventProposal, recipients []string) BatchReport {
	subject, html := ms.RenderInvitation(event)

	var report BatchReport
	for _, to := range recipients {
		sent, err := sendMail(to, subject, html)
		if err != nil || !sent {
			log.Printf("invitation send to %s failed for event %d: %v", to, event.ID, err)
			report.Failed++
			continue
		}
		report.Successful++
	}
	return report
}

// SendInvitationTo re-sends the same invitation to a single address.
func (ms *MailerService) SendInvitationTo(event *models.EventProposal, email string) error {
	subject, html := ms.RenderInvitation(event)
	sent, err := sendMail(email, subject, html)
	if err != nil {
		return err
	}
	if !sent {
		return fmt.Errorf("mail dispatcher did not accept message for %s", email)
	}
	return nil
}

// SendRejectionNotice emails the event creator only. The event type in the
// copy is re-derived from the event name the same way the proposal form
// labels it.
func (ms *MailerService) SendRejectionNotice(event *models.EventProposal) error {
	eventType := DeriveEventType(event.Name)
	subject := fmt.Sprintf("Your %s proposal was not approved", eventType)

	var b strings.Builder
	b.WriteString("<p>Hi " + event.CreatorName + ",</p>")
	b.WriteString(fmt.Sprintf("<p>Unfortunately your %s event <strong>%s</strong> scheduled for %s at %s was not approved.</p>",
		strings.ToLower(eventType), event.Name,
		utils.FormatEventDate(event.EventDate), utils.FormatEventTime(event.EventDate)))
	b.WriteString("<p>Feel free to submit a new proposal any time.</p>")

	sent, err := sendMail(event.CreatorEmail, subject, b.String())
	if err != nil {
		return err
	}
	if !sent {
		return fmt.Errorf("mail dispatcher did not accept rejection notice for %s", event.CreatorEmail)
	}
	return nil
}

// DeriveEventType maps an event name to a human label by substring match,
// e.g. "Saturday Coffee Meetup" -> "Coffee".
func DeriveEventType(name string) string {
	lower := strings.ToLower(name)
	for _, kind := range []string{"Coffee", "Breakfast", "Brunch", "Lunch", "Dinner", "Drinks", "Meetup"} {
		if strings.Contains(lower, strings.ToLower(kind)) {
			return kind
		}
	}
	return "Event"
}

// Global mailer instance
var MailerInstance = NewMailerService()
