// Package task turns a fetched message into the task sent to the task inbox
package task

import (
	"github.com/emersion/go-message/mail"

	"github.com/frenzymadness/imap2rtm/labels"
)

// Payload is the task forwarded to the task inbox
type Payload struct {
	Subject string
	Body    string // no text part is attached when empty

	// MessageID of the source message, used for logging only
	MessageID string
}

// Build creates the task payload for a raw message.
// If the body cannot be extracted, the returned payload still carries
// the subject together with the error.
func Build(raw []byte, set labels.Set, prefix string, opts ExtractOptions) (Payload, error) {
	e, readErr, err := readEntity(raw)
	if err != nil {
		return Payload{}, err
	}

	h := mail.Header{Header: e.Header}
	subject, err := h.Subject()
	if err != nil {
		// Keep the undecoded header
		subject = h.Get("Subject")
	}
	messageID, _ := h.MessageID()

	p := Payload{
		Subject:   Subject(subject, set, prefix),
		MessageID: messageID,
	}

	p.Body, err = extractBody(e, readErr, opts)
	return p, err
}
