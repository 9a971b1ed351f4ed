// Package labels maps the Thunderbird label names to the IMAP keyword
// flags stored on the server, and decides which messages are forwarded
// and how their flags change afterwards.
package labels

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap"
)

// Label is a symbolic label name as shown by the mail client
type Label int

const (
	Star Label = iota
	Important
	Work
	Personal
	Todo
	Later
)

// Default flags from Thunderbird
var registry = [...]struct {
	name string
	flag string
}{
	Star:      {"star", imap.FlaggedFlag},
	Important: {"important", "$label1"}, // red
	Work:      {"work", "$label2"},      // yellow
	Personal:  {"personal", "$label3"},  // green
	Todo:      {"todo", "$label4"},      // blue
	Later:     {"later", "$label5"},     // purple
}

// String returns the symbolic name of the label
func (l Label) String() string {
	if l < 0 || int(l) >= len(registry) {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return registry[l].name
}

// Flag returns the IMAP flag token bound to the label
func (l Label) Flag() string {
	if l < 0 || int(l) >= len(registry) {
		return ""
	}
	return registry[l].flag
}

// All returns every known label in declaration order
func All() []Label {
	return []Label{Star, Important, Work, Personal, Todo, Later}
}

// Parse looks up a label by its symbolic name
func Parse(name string) (Label, error) {
	for _, l := range All() {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", name)
}

// Triggering returns the flags which mark a message for processing.
//   important - transfer with high priority and set green
//   work      - transfer and remove flag
//   todo      - transfer and set green
func Triggering() []string {
	return []string{Important.Flag(), Work.Flag(), Todo.Flag()}
}

// Done returns the flags added to processed important/todo messages
func Done() []string {
	return []string{Personal.Flag()}
}
