package task

import (
	"strings"

	"github.com/frenzymadness/imap2rtm/labels"
)

// Markers removed from forwarded and replied subjects
var subjectMarkers = []string{"Fwd:", "Re:"}

// Subject prepares the email subject which will be the task title.
// The markers understood by the task inbox are appended, so running it
// again on its own output appends them a second time.
func Subject(original string, set labels.Set, prefix string) string {
	subject := original
	for _, marker := range subjectMarkers {
		subject = strings.TrimSpace(strings.ReplaceAll(subject, marker, ""))
	}

	if prefix != "" {
		subject = prefix + " " + subject
	}

	important := set.HasLabel(labels.Important)
	if important {
		subject += " !1 "
	}
	if important || set.HasLabel(labels.Todo) {
		subject += " #@needsreply "
	}
	subject += " #@mail "

	return subject
}
