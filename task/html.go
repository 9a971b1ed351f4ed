package task

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Elements which never have a closing tag
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// StripTags removes all markup from an HTML document and returns its text.
// Entities are decoded and the contents of script and style elements are dropped.
// Every opened element (except void elements) must be closed in order,
// otherwise a MalformedBodyError is returned.
func StripTags(doc string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(doc))

	var text strings.Builder
	var open []string
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", &MalformedBodyError{Err: err}
			}
			if len(open) > 0 {
				return "", &MalformedBodyError{Err: fmt.Errorf("unclosed <%s> element", open[len(open)-1])}
			}
			return text.String(), nil

		case html.TextToken:
			if hidden == 0 {
				text.Write(z.Text())
			}

		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			open = append(open, tag)
			if tag == "script" || tag == "style" {
				hidden++
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			if len(open) == 0 || open[len(open)-1] != tag {
				return "", &MalformedBodyError{Err: fmt.Errorf("unexpected </%s> element", tag)}
			}
			open = open[:len(open)-1]
			if tag == "script" || tag == "style" {
				hidden--
			}
		}
	}
}
