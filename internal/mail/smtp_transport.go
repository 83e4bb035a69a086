package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"surveyhub/internal/logger"
)

// SMTPTransport is the relay fallback channel. It transmits a
// multipart/alternative message (plain text plus HTML) over authenticated
// SMTP.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	send     func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	log      logger.Logger
}

func NewSMTPTransport(host string, port int, username, password string) *SMTPTransport {
	return &SMTPTransport{
		host:     host,
		port:     port,
		username: username,
		password: password,
		send:     smtp.SendMail,
		log:      logger.New("mail").File("smtp_transport"),
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	log := t.log.Function("Send")

	if t.host == "" || t.port == 0 {
		return "", ErrTransportUnavailable
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	var auth smtp.Auth
	if t.username != "" {
		auth = smtp.PlainAuth("", t.username, t.password, t.host)
	}

	raw := buildMultipart(msg)
	if err := t.send(addr, auth, msg.From, []string{msg.To}, raw); err != nil {
		return "", log.Err("smtp send failed", err, "to", msg.To, "host", t.host)
	}

	// SMTP has no provider message id.
	return "", nil
}

const multipartBoundary = "surveyhub-alt-boundary"

func buildMultipart(msg Message) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", multipartBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", multipartBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", multipartBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", multipartBoundary)

	return []byte(b.String())
}
