package imap

import (
	"errors"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/frenzymadness/imap2rtm/labels"
)

// RecentRefs returns the UIDs of all messages received since the given date
func (h *Handler) RecentRefs(since time.Time) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	uids, err := h.client.UidSearch(criteria)
	if err != nil {
		return nil, h.wrap("search", err)
	}
	return uids, nil
}

// LabelSets returns the current flags for each of the given messages,
// in the order of uids. Messages the server did not return are left out.
func (h *Handler) LabelSets(uids []uint32) ([]labels.Message, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)
	items := []imap.FetchItem{imap.FetchFlags, imap.FetchUid}

	messages := make(chan *imap.Message, 100)
	errchan := make(chan error, 1)
	go func() {
		errchan <- h.client.UidFetch(seqSet, items, messages)
	}()

	flags := make(map[uint32]labels.Set, len(uids))
	for msg := range messages {
		if msg.Uid == 0 {
			continue
		}
		flags[msg.Uid] = h.translateFlags(msg.Flags)
	}

	// Check if an error occurred while fetching data
	if err := <-errchan; err != nil {
		return nil, h.wrap("fetch flags", err)
	}

	result := make([]labels.Message, 0, len(flags))
	for _, uid := range uids {
		if set, ok := flags[uid]; ok {
			result = append(result, labels.Message{UID: uid, Labels: set})
		}
	}
	return result, nil
}

// FetchRaw downloads the complete messages for the given uids.
// The seen-flag is not changed on the server.
func (h *Handler) FetchRaw(uids []uint32) (map[uint32][]byte, error) {
	raw := make(map[uint32][]byte, len(uids))
	if len(uids) == 0 {
		return raw, nil
	}

	// Download whole body
	section := &imap.BodySectionName{
		Peek: true, // Do not update seen-flags
	}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	errchan := make(chan error, 1)
	go func() {
		errchan <- h.client.UidFetch(seqSet, items, messages)
	}()

	var readErr error
	for msg := range messages {
		if readErr != nil {
			// Keep draining the channel so the fetch can finish
			continue
		}

		r := msg.GetBody(section)
		if r == nil {
			readErr = errors.New("server didn't return message body")
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			readErr = err
			continue
		}
		raw[msg.Uid] = data
	}

	if err := <-errchan; err != nil {
		return nil, h.wrap("fetch", err)
	}
	if readErr != nil {
		return nil, h.wrap("fetch", readErr)
	}
	return raw, nil
}
