package imap

import (
	"github.com/emersion/go-imap"
	"github.com/frenzymadness/imap2rtm/labels"
)

// translateFlags converts the flags returned by the server into a label set.
// System flags other than \Flagged (the star label) carry no label, so
// they are kept only to make log output complete.
func (h *Handler) translateFlags(imapFlags []string) labels.Set {
	set := labels.NewSet()
	for _, flag := range imapFlags {
		switch flag {
		case imap.RecentFlag:
			// Session specific, never stored
			continue
		default:
			set.Add(flag)
		}
	}
	return set
}
