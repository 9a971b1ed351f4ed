// Package process runs the forwarding pipeline for the configured accounts:
// select labelled messages, forward them as tasks and mark them as processed.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/frenzymadness/imap2rtm/config"
	"github.com/frenzymadness/imap2rtm/journal"
	"github.com/frenzymadness/imap2rtm/labels"
	"github.com/frenzymadness/imap2rtm/task"
)

// Mailbox is an open session on the folder of one account
type Mailbox interface {
	RecentRefs(since time.Time) ([]uint32, error)
	LabelSets(uids []uint32) ([]labels.Message, error)
	FetchRaw(uids []uint32) (map[uint32][]byte, error)
	AddLabels(uid uint32, flags []string) error
	RemoveLabels(uid uint32, flags []string) error
	Close() error
}

// Opener opens the mailbox of an account
type Opener func(account config.Account) (Mailbox, error)

// Dispatcher sends a task to the task inbox
type Dispatcher interface {
	Dispatch(p task.Payload) error
}

// Journal records forwarded messages
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Result summarizes the run of one account
type Result struct {
	Account   string
	Selected  int
	Forwarded int
	Skipped   int
	Err       error
}

// Processor forwards labelled messages of each account to the task inbox
type Processor struct {
	open   Opener
	sender Dispatcher
	logger *log.Logger

	// Since is the date before which messages are ignored
	Since time.Time
	// DryRun only logs the tasks that would be sent
	DryRun bool
	// OnMessageError is config.OnErrorAbort or config.OnErrorSkip
	OnMessageError string
	Extract        task.ExtractOptions
	// Journal is optional
	Journal Journal
	// Progress receives a progress bar per account when set
	Progress io.Writer
}

// New creates a processor using open to reach mailboxes and sender to forward tasks
func New(open Opener, sender Dispatcher, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Processor{
		open:           open,
		sender:         sender,
		logger:         logger,
		Since:          time.Now().AddDate(0, 0, -config.DefaultWindowDays),
		OnMessageError: config.OnErrorAbort,
	}
}

// RunAll runs every account in order. A failing account does not stop the others.
func (p *Processor) RunAll(ctx context.Context, accounts []config.Account) []Result {
	results := make([]Result, 0, len(accounts))
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Account: account.String(), Err: err})
			continue
		}
		results = append(results, p.Run(ctx, account))
	}
	return results
}

// Run forwards the labelled messages of a single account
func (p *Processor) Run(ctx context.Context, account config.Account) Result {
	res := Result{Account: account.String()}
	logger := p.logger.With("account", res.Account)

	mb, err := p.open(account)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if err := mb.Close(); err != nil {
			logger.Warn("cannot close mailbox", "err", err)
		}
	}()

	res.Err = p.run(ctx, logger, account, mb, &res)
	return res
}

func (p *Processor) run(ctx context.Context, logger *log.Logger, account config.Account, mb Mailbox, res *Result) error {
	refs, err := mb.RecentRefs(p.Since)
	if err != nil {
		return err
	}

	msgs, err := mb.LabelSets(refs)
	if err != nil {
		return err
	}
	sets := make(map[uint32]labels.Set, len(msgs))
	for _, m := range msgs {
		sets[m.UID] = m.Labels
	}

	selected := labels.Select(msgs)
	res.Selected = len(selected)
	logger.Debug("checked messages", "recent", len(refs), "selected", len(selected))
	if len(selected) == 0 {
		return nil
	}

	raw, err := mb.FetchRaw(selected)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if p.Progress != nil {
		bar = progressbar.NewOptions(len(selected),
			progressbar.OptionSetDescription(res.Account),
			progressbar.OptionSetWriter(p.Progress))
		defer bar.Finish()
	}

	for _, uid := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}

		forwarded, err := p.forward(ctx, logger.With("uid", uid), account, mb, uid, raw[uid], sets[uid])
		if err != nil {
			return err
		}
		if forwarded {
			res.Forwarded++
		} else {
			res.Skipped++
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

// forward sends one message as a task and marks it as processed.
// It reports false if the message was skipped.
func (p *Processor) forward(ctx context.Context, logger *log.Logger, account config.Account, mb Mailbox, uid uint32, raw []byte, set labels.Set) (bool, error) {
	if raw == nil {
		logger.Warn("message disappeared before it could be fetched")
		return false, nil
	}

	payload, err := task.Build(raw, set, account.SubjectPrefix, p.Extract)
	if err != nil {
		if !p.skipBroken(logger, &payload, err) {
			return false, fmt.Errorf("cannot convert message %d: %w", uid, err)
		}
		if payload.Subject == "" {
			return false, nil
		}
	}

	if p.DryRun {
		logger.Info("would forward message", "subject", payload.Subject, "body", len(payload.Body))
		return true, nil
	}

	err = p.sender.Dispatch(payload)
	if err != nil {
		return false, err
	}
	logger.Debug("forwarded message", "subject", payload.Subject, "message-id", payload.MessageID)

	delta := labels.ComputeDelta(set)
	err = errors.Join(
		mb.AddLabels(uid, delta.Add),
		mb.RemoveLabels(uid, delta.Remove),
	)
	if err != nil {
		return false, fmt.Errorf("cannot mark message %d as processed: %w", uid, err)
	}

	if p.Journal != nil {
		err = p.Journal.Record(ctx, journal.Entry{
			Account:   account.String(),
			UID:       uid,
			MessageID: payload.MessageID,
			Subject:   payload.Subject,
			Time:      time.Now(),
		})
		if err != nil {
			logger.Warn("cannot write journal", "err", err)
		}
	}
	return true, nil
}

// skipBroken applies the message error policy to a conversion error.
// It returns false if the account run has to be aborted. Otherwise
// the payload either has an empty subject, meaning the message is skipped,
// or an empty body, meaning it is sent as is.
func (p *Processor) skipBroken(logger *log.Logger, payload *task.Payload, err error) bool {
	if p.OnMessageError != config.OnErrorSkip {
		return false
	}

	var encErr *task.EncodingError
	var malformed *task.MalformedBodyError
	switch {
	case errors.As(err, &encErr):
		logger.Warn("skipping message which cannot be decoded", "err", err)
		payload.Subject = ""
	case errors.As(err, &malformed):
		if payload.Subject == "" {
			logger.Warn("skipping unreadable message", "err", err)
			break
		}
		logger.Warn("sending message without body", "err", err)
		payload.Body = ""
	default:
		return false
	}
	return true
}
