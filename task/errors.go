package task

import "fmt"

// EncodingError is returned when a message part cannot be decoded
// because its character set is missing or unknown
type EncodingError struct {
	Charset string // empty if none was declared
	Err     error
}

func (e *EncodingError) Error() string {
	if e.Charset == "" {
		if e.Err != nil {
			return fmt.Sprintf("cannot decode message body: %v", e.Err)
		}
		return "cannot decode message body: no charset declared"
	}
	return fmt.Sprintf("cannot decode message body with charset %q: %v", e.Charset, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// MalformedBodyError is returned when a message or its HTML part
// is too broken to be converted to plain text
type MalformedBodyError struct {
	Err error
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed message body: %v", e.Err)
}

func (e *MalformedBodyError) Unwrap() error { return e.Err }
