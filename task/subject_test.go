package task

import (
	"errors"
	"testing"

	"github.com/frenzymadness/imap2rtm/labels"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		set     labels.Set
		prefix  string
		want    string
	}{
		{
			name:    "important with prefix",
			subject: "Fwd: Re: Buy milk",
			set:     labels.NewSet("$label1"),
			prefix:  "[Home]",
			want:    "[Home] Buy milk !1  #@needsreply  #@mail ",
		},
		{
			name:    "todo",
			subject: "Re: Call back",
			set:     labels.NewSet("$label4"),
			want:    "Call back #@needsreply  #@mail ",
		},
		{
			name:    "work",
			subject: "Report",
			set:     labels.NewSet("$label2"),
			want:    "Report #@mail ",
		},
		{
			name:    "markers removed everywhere",
			subject: "Re: Fwd: Re:  Lunch Re:",
			set:     labels.NewSet(),
			want:    "Lunch #@mail ",
		},
		{
			name:    "markers are case sensitive",
			subject: "RE: fwd: Lunch",
			set:     labels.NewSet(),
			want:    "RE: fwd: Lunch #@mail ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.subject, tt.set, tt.prefix); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubjectNotIdempotent(t *testing.T) {
	set := labels.NewSet("$label1")
	once := Subject("Buy milk", set, "")
	twice := Subject(once, set, "")

	want := "Buy milk !1  #@needsreply  #@mail !1  #@needsreply  #@mail "
	if twice != want {
		t.Errorf("Subject(Subject()) = %q, want %q", twice, want)
	}
}

func TestBuild(t *testing.T) {
	raw := crlf(`
From: alice@example.com
Subject: =?utf-8?b?RndkOiBDYWbDqQ==?=
Message-ID: <123@example.com>
Content-Type: text/plain; charset=utf-8

  Two espressos please.
`)

	p, err := Build(raw, labels.NewSet("$label2"), "[Work]", ExtractOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if want := "[Work] Café #@mail "; p.Subject != want {
		t.Errorf("Subject = %q, want %q", p.Subject, want)
	}
	if want := "Two espressos please."; p.Body != want {
		t.Errorf("Body = %q, want %q", p.Body, want)
	}
	if want := "123@example.com"; p.MessageID != want {
		t.Errorf("MessageID = %q, want %q", p.MessageID, want)
	}
}

func TestBuildKeepsSubjectOnBodyError(t *testing.T) {
	raw := crlf(`
Subject: Re: No charset
Content-Type: text/plain

body
`)

	p, err := Build(raw, labels.NewSet("$label4"), "", ExtractOptions{})
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("Build() error = %v, want EncodingError", err)
	}
	if want := "No charset #@needsreply  #@mail "; p.Subject != want {
		t.Errorf("Subject = %q, want %q", p.Subject, want)
	}
}
