// Package notify sends transactional mail over plain SMTP. Works against
// MailHog locally (no auth) and real servers via PlainAuth + STARTTLS.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	// InsecureSkipVerify skips TLS certificate checks (local dev only).
	InsecureSkipVerify bool
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	headers := map[string]string{
		"From":         m.from,
		"To":           to,
		"Subject":      encodeRFC2047(subject),
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	var sb strings.Builder
	for k, v := range headers {
		sb.WriteString(k + ": " + v + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Quit(); err != nil {
			log.Printf("smtp quit: %v", err)
		}
	}()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	// STARTTLS when the server offers it; MailHog does not require it.
	if ok, _ := c.Extension("STARTTLS"); ok {
		cfg := &tls.Config{
			ServerName:         m.host,
			InsecureSkipVerify: m.InsecureSkipVerify,
		}
		if err := c.StartTLS(cfg); err != nil {
			return err
		}
		if err := c.Hello("localhost"); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(sb.String())); err != nil {
		return err
	}
	return w.Close()
}

func (m *Mailer) SendSignupCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(
		`<h2>Confirm your e-mail</h2><p>Your verification code: <b>%s</b></p><p>The code is valid for 1 hour.</p>`, code)
	return m.send(ctx, to, "Confirm your e-mail", body)
}

func (m *Mailer) SendRenewalReminder(ctx context.Context, to, serviceName, renewDate string) error {
	body := fmt.Sprintf(
		`<h2>Upcoming renewal</h2><p><b>%s</b> renews on %s.</p><p>Review it in your subscription list if anything changed.</p>`,
		serviceName, renewDate)
	return m.send(ctx, to, "Subscription renewal reminder", body)
}

// Subject Q-encoding per RFC 2047, for non-ASCII service names.
func encodeRFC2047(s string) string {
	return fmt.Sprintf("=?UTF-8?Q?%s?=", qEncode(s))
}

func qEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == ' ' {
			if c == ' ' {
				b.WriteByte('_')
			} else {
				b.WriteByte(c)
			}
		} else {
			b.WriteString(fmt.Sprintf("=%02X", c))
		}
	}
	return b.String()
}
