package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frenzymadness/imap2rtm/journal"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLabelsCmd(t *testing.T) {
	out, err := execute(t, "labels")
	if err != nil {
		t.Fatalf("labels error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("labels printed %d lines, want header and 6 labels:\n%s", len(lines), out)
	}
	rows := make(map[string][]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		rows[fields[0]] = fields[1:]
	}
	if got := strings.Join(rows["important"], " "); got != "$label1 forwarded" {
		t.Errorf("important = %q", got)
	}
	if got := strings.Join(rows["personal"], " "); got != "$label3 set when processed" {
		t.Errorf("personal = %q", got)
	}
	if got := strings.Join(rows["star"], " "); got != "\\Flagged" {
		t.Errorf("star = %q", got)
	}
}

func TestHistoryCmd(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "journal.db")
	cfgPath := filepath.Join(dir, "config.yml")
	cfg := `task_inbox: tasks@rmilk.example
journal: ` + journalPath + `
smtp:
  server: smtp.example.com
  username: me@example.com
accounts:
  - name: work
    server: imap.example.com
    username: me@example.com
    password: secret
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	db, err := journal.New(ctx, journalPath)
	if err != nil {
		t.Fatalf("journal.New() error: %v", err)
	}
	for _, e := range []journal.Entry{
		{Account: "work", UID: 4, Subject: "Buy milk #@mail "},
		{Account: "work", UID: 9, Subject: "Call mum #@mail "},
	} {
		if err := db.Record(ctx, e); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	db.Close()

	out, err := execute(t, "history", "--config", cfgPath, "-n", "1")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Call mum") {
		t.Errorf("history output = %q, want the newest entry only", out)
	}
}

func TestHistoryCmdWithoutJournal(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := `task_inbox: tasks@rmilk.example
smtp:
  server: smtp.example.com
  username: me@example.com
accounts:
  - server: imap.example.com
    username: me@example.com
    password: secret
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "history", "--config", cfgPath); err == nil {
		t.Error("history without journal should fail")
	}
}

func TestNewLogger(t *testing.T) {
	defer func() { logLevel, verbose = "", false }()

	if _, err := newLogger("loud"); err == nil {
		t.Error("newLogger() with an unknown level should fail")
	}

	logLevel = "loud"
	verbose = true
	logger, err := newLogger("info")
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	if got := logger.GetLevel().String(); got != "debug" {
		t.Errorf("level = %s, want debug", got)
	}
}
