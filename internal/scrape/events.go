package scrape

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TagEvent is a single tag-open event from the widget markup: the
// element identity (tag name + class set) and its attributes. Events
// are delivered strictly in document order; the parser has no fallback
// for reordered delivery.
type TagEvent struct {
	Tag     string
	Classes []string
	Attrs   map[string]string
}

// HasClass reports whether the element's class list contains c.
func (e TagEvent) HasClass(c string) bool {
	for _, cl := range e.Classes {
		if cl == c {
			return true
		}
	}
	return false
}

// Attr returns the named attribute value, or "" if absent.
func (e TagEvent) Attr(name string) string {
	return e.Attrs[name]
}

// Tokenize converts a decoded HTML fragment into its tag-open event
// sequence. Only start and self-closing tags produce events; text,
// comments and end tags are skipped. The byte stream is assumed to be
// already decoded to UTF-8 by the fetch layer.
func Tokenize(r io.Reader) ([]TagEvent, error) {
	z := html.NewTokenizer(r)
	events := make([]TagEvent, 0)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return events, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			ev := TagEvent{
				Tag:   tok.Data,
				Attrs: make(map[string]string, len(tok.Attr)),
			}
			for _, a := range tok.Attr {
				if a.Key == "class" {
					ev.Classes = strings.Fields(a.Val)
					continue
				}
				ev.Attrs[a.Key] = a.Val
			}
			events = append(events, ev)
		}
	}
}
