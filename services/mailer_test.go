package services

import (
	"community-hub-server/models"
	"os"
	"strings"
	"testing"
	"time"
)

func TestRenderInvitationContract(t *testing.T) {
	os.Setenv("PUBLIC_BASE_URL", "https://hub.example.com/")

	event := &models.EventProposal{
		Name:         "Friday Drinks",
		CreatorName:  "Sam Host",
		EventDate:    time.Date(2026, 10, 9, 18, 30, 0, 0, time.UTC),
		RSVPDeadline: time.Date(2026, 10, 7, 23, 59, 0, 0, time.UTC),
		Message:      "First round is on the club",
		InviteToken:  "abc123def456",
		Venue:        models.Venue{Name: "Harbor Bar", Address: "1 Dock Rd"},
	}

	subject, html := MailerInstance.RenderInvitation(event)

	if subject != "You're invited: Friday Drinks at Harbor Bar" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{
		"Friday, October 9, 2026",
		"6:30 PM",
		"Harbor Bar, 1 Dock Rd",
		"Sam Host",
		"<blockquote>First round is on the club</blockquote>",
		"Wednesday, October 7, 2026",
		`href="https://hub.example.com/rsvp?token=abc123def456"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("invitation body missing %q:\n%s", want, html)
		}
	}
}

func TestRenderInvitationOmitsEmptyMessage(t *testing.T) {
	event := &models.EventProposal{
		Name:        "Brunch",
		InviteToken: "tok",
		Venue:       models.Venue{Name: "Cafe", Address: "2 Side St"},
	}
	_, html := MailerInstance.RenderInvitation(event)
	if strings.Contains(html, "<blockquote>") {
		t.Fatalf("empty message must not render a blockquote")
	}
}

func TestDeriveEventType(t *testing.T) {
	cases := map[string]string{
		"Saturday Coffee Meetup":  "Coffee",
		"monthly BRUNCH social":   "Brunch",
		"Dinner at the club":      "Dinner",
		"Annual general assembly": "Event",
	}
	for name, want := range cases {
		if got := DeriveEventType(name); got != want {
			t.Errorf("DeriveEventType(%q) = %q, want %q", name, got, want)
		}
	}
}
