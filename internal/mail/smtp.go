package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/model"
)

const defaultDialTimeout = 10 * time.Second

// SMTPTransport delivers messages through a relay. SMTP_SECURE selects
// implicit TLS; otherwise STARTTLS is used when the server offers it.
type SMTPTransport struct {
	cfg       config.Mail
	timeout   time.Duration
	tlsConfig *tls.Config
	now       func() time.Time
}

func NewSMTPTransport(cfg config.Mail) *SMTPTransport {
	return &SMTPTransport{
		cfg:       cfg,
		timeout:   defaultDialTimeout,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		now:       time.Now,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) (model.DeliveryMode, error) {
	if len(msg.To) == 0 {
		return model.DeliveryFailed, fmt.Errorf("%w: message has no recipients", model.ErrDelivery)
	}
	if msg.From == "" {
		msg.From = t.cfg.From
	}
	envelopeFrom := t.cfg.From
	if a, err := mail.ParseAddress(t.cfg.From); err == nil {
		envelopeFrom = a.Address
	}

	raw, err := buildMessage(msg, t.now())
	if err != nil {
		return model.DeliveryFailed, fmt.Errorf("%w: build message: %v", model.ErrDelivery, err)
	}
	if err := t.deliver(ctx, envelopeFrom, msg.To, raw); err != nil {
		return model.DeliveryFailed, fmt.Errorf("%w: smtp %s: %v", model.ErrDelivery, t.cfg.Host, err)
	}
	return model.DeliverySMTP, nil
}

func (t *SMTPTransport) deliver(ctx context.Context, from string, to []string, raw []byte) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	dialer := &net.Dialer{Timeout: t.timeout}

	var conn net.Conn
	var err error
	if t.cfg.Secure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: t.tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if !t.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(t.tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if t.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return c.Quit()
}

// buildMessage renders msg as multipart/mixed: a UTF-8 text part followed
// by one base64 part per attachment.
func buildMessage(msg Message, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textHeader.Set("Content-Transfer-Encoding", "8bit")
	pw, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write([]byte(normalizeCRLF(msg.Text))); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("%s; name=%q", ct, a.Filename))
		h.Set("Content-Transfer-Encoding", "base64")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		aw, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := aw.Write(wrapBase64([]byte(a.Content))); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	writeHeader(&out, "From", msg.From)
	writeHeader(&out, "To", strings.Join(msg.To, ", "))
	writeHeader(&out, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&out, "Date", now.Format(time.RFC1123Z))
	writeHeader(&out, "MIME-Version", "1.0")
	writeHeader(&out, "Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	// header injection guard
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	buf.WriteString(key + ": " + value + "\r\n")
}

func normalizeCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// wrapBase64 encodes data with 76-character lines.
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	out.WriteString("\r\n")
	return out.Bytes()
}
