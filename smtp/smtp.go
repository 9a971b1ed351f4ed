// Package smtp sends tasks to the task inbox as mail
package smtp

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/frenzymadness/imap2rtm/config"
	"github.com/frenzymadness/imap2rtm/task"
)

// DispatchError is returned when a task could not be sent
type DispatchError struct {
	Subject string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("cannot send task %q: %v", e.Subject, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Sender sends tasks through an SMTP server, one session per task
type Sender struct {
	cfg config.SMTP
	to  string

	now func() time.Time
}

// New creates a sender delivering tasks to the address to
func New(cfg config.SMTP, to string) *Sender {
	return &Sender{
		cfg: cfg,
		to:  to,
		now: time.Now,
	}
}

// Dispatch sends the payload as mail to the task inbox
func (s *Sender) Dispatch(p task.Payload) error {
	var msg bytes.Buffer
	if err := s.compose(&msg, p); err != nil {
		return &DispatchError{Subject: p.Subject, Err: err}
	}
	if err := s.send(&msg); err != nil {
		return &DispatchError{Subject: p.Subject, Err: err}
	}
	return nil
}

// compose writes a single text/plain message with the task title as subject
// and the task body as text. An empty body gives a message with an empty text.
func (s *Sender) compose(w io.Writer, p task.Payload) error {
	var h mail.Header
	h.SetDate(s.now())
	h.SetAddressList("From", []*mail.Address{{Address: s.cfg.Sender()}})
	h.SetAddressList("To", []*mail.Address{{Address: s.to}})
	h.SetSubject(p.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return err
	}

	tw, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(tw, p.Body); err != nil {
		return err
	}
	return tw.Close()
}

func (s *Sender) send(msg io.Reader) error {
	addr := net.JoinHostPort(s.cfg.Server, strconv.Itoa(s.cfg.Port))
	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Server,
		InsecureSkipVerify: s.cfg.SkipTLSVerify,
	}

	var c *smtp.Client
	var err error
	if s.cfg.UseTLS {
		c, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return err
	}
	defer c.Close()

	if s.cfg.UseStartTLS && !s.cfg.UseTLS {
		if err = c.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			return err
		}
	}

	if err = c.Mail(s.cfg.Sender(), nil); err != nil {
		return err
	}
	if err = c.Rcpt(s.to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
