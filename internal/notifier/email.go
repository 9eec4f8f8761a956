package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
)

// EmailChannel sends an HTML digest over SMTP. Port 465 uses implicit TLS,
// anything else goes through net/smtp's STARTTLS path.
type EmailChannel struct {
	host        string
	port        int
	sender      string
	senderName  string
	password    string
	recipients  []string
	digestLimit int
	logger      *observability.Logger

	send func(ctx context.Context, msg []byte) error
}

func NewEmailChannel(host string, port int, sender, senderName, password string, recipients []string, digestLimit int, logger *observability.Logger) *EmailChannel {
	c := &EmailChannel{
		host:        host,
		port:        port,
		sender:      sender,
		senderName:  senderName,
		password:    password,
		recipients:  recipients,
		digestLimit: digestLimit,
		logger:      logger,
	}
	c.send = c.sendSMTP
	return c
}

func (e *EmailChannel) Name() string {
	return "email"
}

func (e *EmailChannel) Send(ctx context.Context, notices []notice.Notice) error {
	msg := e.buildMessage(notices)
	if err := e.send(ctx, msg); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	e.logger.Debug("email sent", "recipients", len(e.recipients))
	return nil
}

func (e *EmailChannel) buildMessage(notices []notice.Notice) []byte {
	if len(notices) > e.digestLimit {
		notices = notices[:e.digestLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", e.senderName, e.sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.recipients, ", "))
	fmt.Fprintf(&b, "Subject: 📢 Notice Update\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h3>📢 New Notices (Last %d):</h3>", len(notices))
	b.WriteString(`<table border="1" cellspacing="0" cellpadding="5">`)
	b.WriteString("<tr><th>#</th><th>Date</th><th>Title</th><th>Link</th></tr>")
	for i, n := range notices {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td><td><a href=%q>View</a></td></tr>",
			i+1, html.EscapeString(n.Date), html.EscapeString(n.Title), n.URL)
	}
	b.WriteString("</table></body></html>")

	return []byte(b.String())
}

func (e *EmailChannel) sendSMTP(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))
	auth := smtp.PlainAuth("", e.sender, e.password, e.host)

	if e.port != 465 {
		return smtp.SendMail(addr, auth, e.sender, e.recipients, msg)
	}

	// Implicit TLS. net/smtp.SendMail only does STARTTLS, so dial the TLS
	// session ourselves and drive the client by hand.
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: e.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}

	client, err := smtp.NewClient(conn, e.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(e.sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range e.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

var _ Channel = (*EmailChannel)(nil)
