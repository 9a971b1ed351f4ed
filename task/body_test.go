package task

import (
	"errors"
	"strings"
	"testing"
)

// crlf converts a readable fixture to the line endings used on the wire
func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(strings.TrimPrefix(s, "\n"), "\n", "\r\n"))
}

const multipartHeader = `
From: alice@example.com
Subject: test
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="XXX"

`

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts ExtractOptions
		want string
	}{
		{
			name: "single part is trimmed",
			raw: `
Subject: hello
Content-Type: text/plain; charset=utf-8

  hello  `,
			want: "hello",
		},
		{
			name: "single part in latin1",
			raw: `
Subject: cafe
Content-Type: text/plain; charset=iso-8859-1
Content-Transfer-Encoding: quoted-printable

caf=E9
`,
			want: "café",
		},
		{
			name: "html only",
			raw: multipartHeader + `--XXX
Content-Type: text/html; charset=utf-8

<p>Hi <b>there</b></p>
--XXX--
`,
			want: "Hi there",
		},
		{
			name: "plain text preferred over earlier html",
			raw: multipartHeader + `--XXX
Content-Type: text/html; charset=utf-8

<p>html body</p>
--XXX
Content-Type: text/plain; charset=utf-8

plain body
--XXX--
`,
			want: "plain body",
		},
		{
			name: "first plain part wins",
			raw: multipartHeader + `--XXX
Content-Type: text/plain; charset=utf-8

first
--XXX
Content-Type: text/plain; charset=utf-8

second
--XXX--
`,
			want: "first",
		},
		{
			name: "part without charset ends the scan",
			raw: multipartHeader + `--XXX
Content-Type: text/plain

undecodable
--XXX
Content-Type: text/plain; charset=utf-8

real body
--XXX--
`,
			want: "",
		},
		{
			name: "part without charset discards earlier html",
			raw: multipartHeader + `--XXX
Content-Type: text/html; charset=utf-8

<p>html body</p>
--XXX
Content-Type: application/pdf

%PDF-1.4
--XXX--
`,
			want: "",
		},
		{
			name: "part without charset skipped",
			raw: multipartHeader + `--XXX
Content-Type: text/plain

undecodable
--XXX
Content-Type: text/plain; charset=utf-8

real body
--XXX--
`,
			opts: ExtractOptions{SkipUndecodable: true},
			want: "real body",
		},
		{
			name: "nested alternative",
			raw: multipartHeader + `--XXX
Content-Type: multipart/alternative; boundary="YYY"

--YYY
Content-Type: text/html; charset=utf-8

<div>nested html</div>
--YYY
Content-Type: text/plain; charset=utf-8

nested plain
--YYY--
--XXX--
`,
			opts: ExtractOptions{SkipUndecodable: true},
			want: "nested plain",
		},
		{
			name: "nested alternative without skipping",
			raw: multipartHeader + `--XXX
Content-Type: multipart/alternative; boundary="YYY"

--YYY
Content-Type: text/plain; charset=utf-8

nested plain
--YYY--
--XXX--
`,
			want: "",
		},
		{
			name: "no text parts",
			raw: multipartHeader + `--XXX
Content-Type: image/png; charset=binary; name=a.png

PNG
--XXX--
`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBody(crlf(tt.raw), tt.opts)
			if err != nil {
				t.Fatalf("ExtractBody() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBodyEncodingError(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		charset string
	}{
		{
			name: "no charset",
			raw: `
Subject: hello
Content-Type: text/plain

hello
`,
		},
		{
			name: "no content type",
			raw: `
Subject: hello

hello
`,
		},
		{
			name: "unknown charset",
			raw: `
Subject: hello
Content-Type: text/plain; charset=x-no-such-charset

hello
`,
			charset: "x-no-such-charset",
		},
		{
			name: "unknown charset in part",
			raw: multipartHeader + `--XXX
Content-Type: text/plain; charset=x-no-such-charset

hello
--XXX--
`,
			charset: "x-no-such-charset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractBody(crlf(tt.raw), ExtractOptions{})
			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Fatalf("ExtractBody() error = %v, want EncodingError", err)
			}
			if encErr.Charset != tt.charset {
				t.Errorf("charset = %q, want %q", encErr.Charset, tt.charset)
			}
		})
	}
}

func TestExtractBodyMalformedHTML(t *testing.T) {
	raw := multipartHeader + `--XXX
Content-Type: text/html; charset=utf-8

<p>Hi <b>there</p>
--XXX--
`
	_, err := ExtractBody(crlf(raw), ExtractOptions{})
	var malformed *MalformedBodyError
	if !errors.As(err, &malformed) {
		t.Fatalf("ExtractBody() error = %v, want MalformedBodyError", err)
	}
}
