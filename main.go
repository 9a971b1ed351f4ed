package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/frenzymadness/imap2rtm/config"
	"github.com/frenzymadness/imap2rtm/imap"
	"github.com/frenzymadness/imap2rtm/journal"
	"github.com/frenzymadness/imap2rtm/labels"
	"github.com/frenzymadness/imap2rtm/process"
	"github.com/frenzymadness/imap2rtm/smtp"
)

// errAccountsFailed is returned by the run command once the failures have been logged
var errAccountsFailed = errors.New("one or more accounts failed")

var (
	cfgFile  string
	logLevel string
	verbose  bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "imap2rtm",
		Short:         "Forward labelled mail to a task inbox",
		Long:          "Checks IMAP mailboxes for messages carrying the important, work or todo labels,\nsends each one as a task by mail and marks it as processed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "./config.yml", "config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "same as --log-level debug")
	root.AddCommand(newRunCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newHistoryCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var dryRun, progress bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Forward labelled messages of all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.ExpandPath(cfgFile))
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := process.New(openMailbox, smtp.New(cfg.SMTP, cfg.TaskInbox), logger)
			p.Since = cfg.Since(time.Now())
			p.DryRun = dryRun
			p.OnMessageError = cfg.OnMessageError
			p.Extract.SkipUndecodable = cfg.SkipUndecodableParts
			if progress {
				p.Progress = os.Stderr
			}

			if cfg.Journal != "" && !dryRun {
				db, err := journal.New(ctx, cfg.Journal)
				if err != nil {
					return err
				}
				defer db.Close()
				p.Journal = db
			}

			failed := false
			for _, res := range p.RunAll(ctx, cfg.Accounts) {
				if res.Err == nil {
					logger.Debug("account done", "account", res.Account,
						"selected", res.Selected, "forwarded", res.Forwarded, "skipped", res.Skipped)
					continue
				}

				failed = true
				logger.Error("account failed", "account", res.Account, "forwarded", res.Forwarded, "err", res.Err)
				trace := process.Trace(res.Err)
				for _, line := range trace[1:] {
					fmt.Fprintln(os.Stderr, "    caused by:", line)
				}
			}
			if failed {
				return errAccountsFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not send any task, only show which messages would be forwarded")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar per account")
	return cmd
}

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the known labels and their IMAP flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			triggering := labels.NewSet(labels.Triggering()...)
			done := labels.NewSet(labels.Done()...)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tFLAG\tROLE")
			for _, l := range labels.All() {
				role := ""
				switch {
				case triggering.Has(l.Flag()):
					role = "forwarded"
				case done.Has(l.Flag()):
					role = "set when processed"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", l, l.Flag(), role)
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recently forwarded messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.ExpandPath(cfgFile))
			if err != nil {
				return err
			}
			if cfg.Journal == "" {
				return errors.New("no journal configured")
			}

			db, err := journal.New(cmd.Context(), cfg.Journal)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACCOUNT\tUID\tSUBJECT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Time.Format(time.DateTime), e.Account, e.UID, e.Subject)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show, 0 for all")
	return cmd
}

// openMailbox connects to the IMAP server of an account
func openMailbox(account config.Account) (process.Mailbox, error) {
	h, err := imap.New(account)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// newLogger creates the stderr logger. The command line flags take
// precedence over the configured level.
func newLogger(configured string) (*log.Logger, error) {
	name := configured
	if logLevel != "" {
		name = logLevel
	}
	if verbose {
		name = "debug"
	}

	level, err := log.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	}), nil
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		if !errors.Is(err, errAccountsFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
