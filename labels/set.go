package labels

import (
	"sort"
	"strings"
)

// Set holds the flags attached to one message.
// IMAP keywords are case-insensitive, so lookups ignore case.
type Set map[string]struct{}

// NewSet creates a set from the flags returned by the server
func NewSet(flags ...string) Set {
	s := make(Set, len(flags))
	for _, f := range flags {
		s[strings.ToLower(f)] = struct{}{}
	}
	return s
}

// Has reports whether the flag is present
func (s Set) Has(flag string) bool {
	_, ok := s[strings.ToLower(flag)]
	return ok
}

// HasLabel reports whether the flag bound to l is present
func (s Set) HasLabel(l Label) bool {
	return s.Has(l.Flag())
}

// HasAny reports whether any of the flags is present
func (s Set) HasAny(flags ...string) bool {
	for _, f := range flags {
		if s.Has(f) {
			return true
		}
	}
	return false
}

// Add inserts flags into the set
func (s Set) Add(flags ...string) {
	for _, f := range flags {
		s[strings.ToLower(f)] = struct{}{}
	}
}

// Remove deletes flags from the set
func (s Set) Remove(flags ...string) {
	for _, f := range flags {
		delete(s, strings.ToLower(f))
	}
}

// Flags returns the (lower-cased) flags in sorted order
func (s Set) Flags() []string {
	flags := make([]string, 0, len(s))
	for f := range s {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return flags
}

// Message pairs a message UID with its current flags
type Message struct {
	UID    uint32
	Labels Set
}
