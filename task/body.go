package task

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-message"
	// Register charset decoders (windows-1252, iso-8859-*, koi8-r, etc.)
	_ "github.com/emersion/go-message/charset"
)

// ExtractOptions changes how multipart messages are scanned
type ExtractOptions struct {
	// SkipUndecodable skips parts without a declared charset and descends
	// into nested multiparts, instead of giving up with an empty body
	// at the first part without a charset.
	SkipUndecodable bool
}

// ExtractBody returns the body of a raw RFC 822 message as plain text
func ExtractBody(raw []byte, opts ExtractOptions) (string, error) {
	e, readErr, err := readEntity(raw)
	if err != nil {
		return "", err
	}
	return extractBody(e, readErr, opts)
}

// readEntity parses the message headers. Unknown charsets and transfer
// encodings are returned as readErr, and are only reported once
// the affected part is decoded.
func readEntity(raw []byte) (e *message.Entity, readErr error, err error) {
	e, readErr = message.Read(bytes.NewReader(raw))
	if e == nil {
		return nil, nil, &MalformedBodyError{Err: readErr}
	}
	return e, readErr, nil
}

func extractBody(e *message.Entity, readErr error, opts ExtractOptions) (string, error) {
	if mr := e.MultipartReader(); mr != nil {
		var s scan
		if err := s.parts(mr, opts); err != nil {
			return "", err
		}
		return s.result()
	}

	// Single part message, we need a charset to decode it
	_, params, _ := e.Header.ContentType()
	text, err := decodePart(e, params, readErr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// scan keeps track of the candidate bodies found in a multipart message
type scan struct {
	done     bool
	plain    string
	hasPlain bool
	html     string
	hasHTML  bool
}

func (s *scan) parts(mr message.MultipartReader, opts ExtractOptions) error {
	for !s.done {
		p, readErr := mr.NextPart()
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if p == nil {
			return &MalformedBodyError{Err: readErr}
		}

		mediaType, params, _ := p.Header.ContentType()

		if opts.SkipUndecodable && strings.HasPrefix(mediaType, "multipart/") {
			if nested := p.MultipartReader(); nested != nil {
				if err := s.parts(nested, opts); err != nil {
					return err
				}
			}
			continue
		}

		if params["charset"] == "" {
			if opts.SkipUndecodable {
				continue
			}
			// We cannot know the character set, and the first such part ends the scan,
			// discarding any HTML part seen before it
			s.done = true
			s.hasHTML = false
			s.html = ""
			return nil
		}

		switch mediaType {
		case "text/plain":
			text, err := decodePart(p, params, readErr)
			if err != nil {
				return err
			}
			s.plain, s.hasPlain, s.done = text, true, true
		case "text/html":
			if s.hasHTML {
				continue
			}
			text, err := decodePart(p, params, readErr)
			if err != nil {
				return err
			}
			s.html, s.hasHTML = text, true
		}
	}
	return nil
}

func (s *scan) result() (string, error) {
	if s.hasPlain {
		return strings.TrimSpace(s.plain), nil
	}
	if s.hasHTML {
		text, err := StripTags(strings.TrimSpace(s.html))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}
	return "", nil
}

// decodePart reads the body of a part which go-message has already
// converted to UTF-8. readErr is the error returned when the part was read.
func decodePart(e *message.Entity, params map[string]string, readErr error) (string, error) {
	charset := params["charset"]
	if charset == "" {
		return "", &EncodingError{}
	}
	if message.IsUnknownCharset(readErr) || message.IsUnknownEncoding(readErr) {
		return "", &EncodingError{Charset: charset, Err: readErr}
	}

	data, err := io.ReadAll(e.Body)
	if err != nil {
		return "", &EncodingError{Charset: charset, Err: err}
	}
	return string(data), nil
}
