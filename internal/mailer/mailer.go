// Package mailer dispatches guest and admin notification emails.
// Delivery is fire-and-forget: a buffered channel feeds a single worker
// goroutine, so the HTTP request that triggers a notification never
// waits on SMTP.  Failures are logged and swallowed; they never roll
// back the state transition that produced them.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string // HTML fragment, wrapped into the event template on send
}

// Dispatcher queues messages for background delivery.
type Dispatcher struct {
	ch   chan Message
	send func(Message) error
}

// New returns a running Dispatcher delivering over SMTP.  Without SMTP
// credentials configured, every send degrades to a logged mock that
// reports success, so the reservation flow works in environments with
// no mail set up.
func New() *Dispatcher {
	return newDispatcher(sendSMTP)
}

func newDispatcher(send func(Message) error) *Dispatcher {
	d := &Dispatcher{ch: make(chan Message, 64), send: send}
	go d.run()
	return d
}

// Notify enqueues a message without blocking.  When the buffer is full
// the message is dropped and logged; once dispatched a send cannot be
// revoked.
func (d *Dispatcher) Notify(to, subject, body string) {
	select {
	case d.ch <- Message{To: to, Subject: subject, Body: body}:
	default:
		log.Printf("mailer: queue full, dropping email to %s (%s)", to, subject)
	}
}

func (d *Dispatcher) run() {
	for m := range d.ch {
		if err := d.send(m); err != nil {
			log.Printf("mailer: send to %s failed: %v", m.To, err)
		}
	}
}

// sendSMTP delivers one message.  Configuration comes from SMTP_HOST,
// SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and SMTP_FROM_NAME.
func sendSMTP(m Message) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USERNAME")
	pass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")

	if host == "" || port == "" || user == "" || pass == "" {
		log.Printf("[MOCK EMAIL] to:%s subject:%q", m.To, m.Subject)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", fromName, user)
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + m.To + "\r\n")
	sb.WriteString("Subject: " + sanitizeHeader(m.Subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(wrapHTML(m.Body))

	auth := smtp.PlainAuth("", user, pass, host)
	addr := fmt.Sprintf("%s:%s", host, port)
	if err := smtp.SendMail(addr, auth, user, []string{m.To}, []byte(sb.String())); err != nil {
		return err
	}
	log.Printf("mailer: email sent to %s", m.To)
	return nil
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
