package mailer

import (
	"fmt"
	"html"
	"os"
)

// Event details rendered into every email.  They are read per send so a
// restart is never needed to change them.
func eventName() string { return envDefault("EVENT_NAME", "Our Event") }

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ConfirmationSubject and friends build the guest-facing messages for
// admin send_email actions, plus the internal new-reservation notice.

func ConfirmationSubject() string {
	return fmt.Sprintf("You're In! %s Confirmation", eventName())
}

func ConfirmationBody(firstName string, seatNumber int) string {
	return fmt.Sprintf(
		"<p>Dear %s,</p><p>Your seat <strong>#%d</strong> for %s has been confirmed.</p>",
		html.EscapeString(firstName), seatNumber, html.EscapeString(eventName()))
}

func DeclineSubject() string {
	return fmt.Sprintf("Update on your Reservation Request - %s", eventName())
}

func DeclineBody(firstName string) string {
	return fmt.Sprintf(
		"<p>Dear %s,</p>"+
			"<p>Thank you for your RSVP. We are truly humbled by the love and support we have received.</p>"+
			"<p>Unfortunately, due to strict venue capacity limitations, we are unable to accommodate "+
			"your reservation request at this time. We are genuinely sorry for this outcome and hope "+
			"you understand that this decision was difficult for us to make.</p>"+
			"<p>Thank you for your warm wishes.</p>",
		html.EscapeString(firstName))
}

func NewReservationSubject() string { return "New Reservation Received" }

func NewReservationBody(firstName, surname string, seatNumber int) string {
	return fmt.Sprintf(
		"<p>New reservation from <strong>%s %s</strong> for seat <strong>#%d</strong>.</p>",
		html.EscapeString(firstName), html.EscapeString(surname), seatNumber)
}

// wrapHTML renders the shared event email frame around a body fragment.
func wrapHTML(body string) string {
	name := html.EscapeString(eventName())
	date := html.EscapeString(envDefault("EVENT_DATE", ""))
	venue := html.EscapeString(envDefault("EVENT_VENUE", ""))
	footer := ""
	if date != "" || venue != "" {
		footer = fmt.Sprintf("<p><strong>Date:</strong> %s<br><strong>Venue:</strong> %s</p>", date, venue)
	}
	return fmt.Sprintf(`<html>
  <body style="font-family: 'Times New Roman', serif; color: #333; line-height: 1.6; background-color: #f9f9f9; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 40px; border: 1px solid #e0e0e0; text-align: center;">
      <h1 style="color: #c5a059; font-size: 2.5em; margin-bottom: 10px;">%s</h1>
      <hr style="border: 0; border-top: 1px solid #c5a059; width: 50%%; margin: 20px auto;">
      <div style="text-align: left; margin: 30px 0;">%s</div>
      <div style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee; color: #888; font-size: 0.9em;">
        <p>We can't wait to celebrate with you!</p>
        %s
      </div>
    </div>
  </body>
</html>`, name, body, footer)
}
