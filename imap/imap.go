package imap

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/emersion/go-imap/client"
	"github.com/frenzymadness/imap2rtm/config"
)

// ConnectionError is returned when the mailbox session cannot be
// established, or fails while in use
type ConnectionError struct {
	Account string
	Op      string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("imap %s (%s): %v", e.Op, e.Account, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Handler is responsible for reading labels and messages from a mailbox,
// and for updating the labels once messages have been processed.
// Note that a single handler only works on the one folder selected by New
type Handler struct {
	account config.Account
	client  *client.Client
}

// New connects and logs in to the account's server, and selects its folder
func New(account config.Account) (*Handler, error) {
	h := &Handler{account: account}

	if account.Server == "" {
		return nil, errors.New("imap server address not configured")
	}
	if account.Username == "" {
		return nil, errors.New("imap username not configured")
	}
	if account.Password == "" {
		return nil, errors.New("imap password not configured")
	}

	port := account.Port
	if port == 0 {
		port = 143
		if account.UseTLS {
			port = 993
		}
	}

	connectionString := fmt.Sprintf("%s:%d", account.Server, port)
	tlsConfig := &tls.Config{
		ServerName:         account.Server,
		InsecureSkipVerify: account.SkipTLSVerify,
	}

	var err error
	if account.UseTLS {
		h.client, err = client.DialTLS(connectionString, tlsConfig)
	} else {
		h.client, err = client.Dial(connectionString)
	}
	if err != nil {
		return nil, h.wrap("dial", err)
	}

	// Start a TLS session
	if account.UseStartTLS && !account.UseTLS {
		if err = h.client.StartTLS(tlsConfig); err != nil {
			_ = h.client.Logout()
			return nil, h.wrap("starttls", err)
		}
	}

	err = h.client.Login(account.Username, account.Password)
	if err != nil {
		_ = h.client.Logout()
		return nil, h.wrap("login", err)
	}

	_, err = h.client.Select(h.folder(), false)
	if err != nil {
		_ = h.client.Logout()
		return nil, h.wrap("select "+h.folder(), err)
	}
	return h, nil
}

// Close logs out from the server
func (h *Handler) Close() error {
	if err := h.client.Logout(); err != nil {
		return h.wrap("logout", err)
	}
	return nil
}

func (h *Handler) folder() string {
	if h.account.Folder == "" {
		return "INBOX"
	}
	return h.account.Folder
}

func (h *Handler) wrap(op string, err error) error {
	return &ConnectionError{
		Account: h.account.String(),
		Op:      op,
		Err:     err,
	}
}
