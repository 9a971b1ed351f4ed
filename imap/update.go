package imap

import (
	"github.com/emersion/go-imap"
)

// AddLabels adds the flags to a message
func (h *Handler) AddLabels(uid uint32, flags []string) error {
	return h.store(uid, imap.AddFlags, flags)
}

// RemoveLabels removes the flags from a message
func (h *Handler) RemoveLabels(uid uint32, flags []string) error {
	return h.store(uid, imap.RemoveFlags, flags)
}

func (h *Handler) store(uid uint32, op imap.FlagsOp, flags []string) error {
	// Check if we actually have to do anything
	if len(flags) == 0 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	// UidStore / Store expects a list of interface{}, it can't handle []string
	tags := make([]interface{}, 0, len(flags))
	for _, v := range flags {
		tags = append(tags, v)
	}

	err := h.client.UidStore(seqSet, imap.FormatFlagsOp(op, true), tags, nil)
	if err != nil {
		return h.wrap("store "+string(op), err)
	}
	return nil
}
