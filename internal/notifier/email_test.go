package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
)

func testEmailChannel() *EmailChannel {
	return NewEmailChannel(
		"smtp.example.com", 465,
		"bot@example.com", "Notice Bot", "secret",
		[]string{"a@example.edu", "b@example.edu"},
		5,
		observability.NewTestLogger(),
	)
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(testEmailChannel().buildMessage([]notice.Notice{
		{Date: "01 Feb 2026", Title: "Exam routine", URL: "https://rgccr.gov.bd/notice/1"},
	}))

	for _, want := range []string{
		"From: Notice Bot <bot@example.com>\r\n",
		"To: a@example.edu, b@example.edu\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing header %q:\n%s", want, msg)
		}
	}
}

func TestBuildMessageBody(t *testing.T) {
	msg := string(testEmailChannel().buildMessage([]notice.Notice{
		{Date: "01 Feb 2026", Title: "Exam <b>routine</b>", URL: "https://rgccr.gov.bd/notice/1"},
	}))

	if !strings.Contains(msg, "Exam &lt;b&gt;routine&lt;/b&gt;") {
		t.Errorf("title not HTML-escaped:\n%s", msg)
	}
	if !strings.Contains(msg, `href="https://rgccr.gov.bd/notice/1"`) {
		t.Errorf("view link missing:\n%s", msg)
	}
}

func TestBuildMessageDigestLimit(t *testing.T) {
	var notices []notice.Notice
	for i := 0; i < 9; i++ {
		notices = append(notices, notice.Notice{Date: "d", Title: "t", URL: "u"})
	}

	msg := string(testEmailChannel().buildMessage(notices))
	if got := strings.Count(msg, "<tr><td>"); got != 5 {
		t.Errorf("expected 5 digest rows, got %d", got)
	}
	if !strings.Contains(msg, "New Notices (Last 5)") {
		t.Errorf("heading should reflect the digest size:\n%s", msg)
	}
}

func TestSendUsesTransport(t *testing.T) {
	ch := testEmailChannel()

	var sent []byte
	ch.send = func(_ context.Context, msg []byte) error {
		sent = msg
		return nil
	}

	err := ch.Send(context.Background(), []notice.Notice{{Date: "d", Title: "t", URL: "u"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sent) == 0 {
		t.Fatal("transport was not invoked")
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	ch := testEmailChannel()
	ch.send = func(_ context.Context, _ []byte) error {
		return errors.New("connection refused")
	}

	err := ch.Send(context.Background(), []notice.Notice{{Title: "t", URL: "u"}})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}
