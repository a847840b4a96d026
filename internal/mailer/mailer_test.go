package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInBackground(t *testing.T) {
	got := make(chan Message, 1)
	d := newDispatcher(func(m Message) error {
		got <- m
		return nil
	})

	d.Notify("guest@example.com", "hello", "<p>hi</p>")

	select {
	case m := <-got:
		require.Equal(t, "guest@example.com", m.To)
		require.Equal(t, "hello", m.Subject)
	case <-time.After(2 * time.Second):
		t.Fatal("message was never delivered")
	}
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	d := newDispatcher(func(Message) error {
		<-block
		return nil
	})
	defer close(block)

	// Fill the buffer and then some; Notify must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			d.Notify("guest@example.com", "s", "b")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked the caller")
	}
}

func TestSendWithoutCredentialsIsMockSuccess(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USERNAME", "")
	t.Setenv("SMTP_PASSWORD", "")

	err := sendSMTP(Message{To: "guest@example.com", Subject: "hi", Body: "<p>hi</p>"})
	require.NoError(t, err, "missing mail config must not fail the workflow")
}

func TestTemplates(t *testing.T) {
	t.Setenv("EVENT_NAME", "Ndivhuwo & Mpho")
	t.Setenv("EVENT_DATE", "2 May 2026")
	t.Setenv("EVENT_VENUE", "Rand Collieries, Brakpan")

	body := ConfirmationBody("Thandi", 17)
	require.Contains(t, body, "Thandi")
	require.Contains(t, body, "#17")
	require.Contains(t, ConfirmationSubject(), "Ndivhuwo & Mpho")

	require.Contains(t, DeclineBody("Thandi"), "venue capacity")

	html := wrapHTML("<p>x</p>")
	require.Contains(t, html, "Ndivhuwo &amp; Mpho")
	require.Contains(t, html, "2 May 2026")
	require.Contains(t, html, "Rand Collieries, Brakpan")
	require.Contains(t, html, "<p>x</p>")
}

func TestTemplateEscaping(t *testing.T) {
	t.Setenv("EVENT_NAME", "")
	body := NewReservationBody("<script>", "Mokoena", 4)
	require.NotContains(t, body, "<script>")
	require.Contains(t, body, "&lt;script&gt;")
}
