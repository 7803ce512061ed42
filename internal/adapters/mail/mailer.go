// Package mail sends the cover sheet over SMTP as a multipart/mixed
// message with the PDF attached.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/csg33k/txn-intake/internal/ports"
)

type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     SendFunc
	now      func() time.Time
}

// New returns an SMTP mailer. Authentication is PLAIN when a username is
// set and skipped otherwise.
func New(host string, port int, username, password, from string, to []string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// WithSendFunc replaces the SMTP transport.
func (m *Mailer) WithSendFunc(f SendFunc) *Mailer {
	m.send = f
	return m
}

func (m *Mailer) Send(ctx context.Context, subject, body string, attachments ...ports.Attachment) error {
	if len(m.to) == 0 {
		return errors.New("mail: no recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.Message(subject, body, attachments...)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, auth, m.from, m.to, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", addr, err)
	}
	return nil
}

// Message builds the RFC 5322 message Send would deliver.
func (m *Mailer) Message(subject, body string, attachments ...ports.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 wraps encoded data at 76 columns.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc + "\r\n"))
	return err
}
