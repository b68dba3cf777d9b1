// Package report renders a digest into the plain-text email body. Each
// topic becomes a titled section with one line per entry, ending in the
// bracketed content handle the reply watcher parses back out.
package report

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"mediamail/internal/model"
)

// Subject is the fixed subject line of digest emails.
const Subject = "Your Latest Social Media Search Results"

type Entry struct {
	ScreenName string
	Text       string
	Link       string
	Handle     string
	Score      int
}

type Section struct {
	Title   string
	Entries []Entry
}

type Data struct {
	Title string
	// Bracket pair wrapping handles, matching the reply parser's
	// configuration so rendered handles survive the round trip.
	Open     string
	Close    string
	Sections []Section
}

//go:embed report.tmpl
var reportTpl string

var compiled = template.Must(template.New("report").Parse(reportTpl))

// Build shapes a digest for rendering. Topics with no entries produce no
// section; a missing screen name falls back to "Unknown". The bracket pair
// must match the reply parser's; empty strings select the defaults.
func Build(d model.Digest, title, open, close string) Data {
	data := Data{Title: title, Open: open, Close: close}
	for _, sec := range d.Sections {
		if len(sec.Entries) == 0 {
			continue
		}
		out := Section{Title: sec.Topic.Title}
		for _, e := range sec.Entries {
			screen := e.AuthorScreenName
			if screen == "" {
				screen = "Unknown"
			}
			out.Entries = append(out.Entries, Entry{
				ScreenName: screen,
				Text:       e.Text,
				Link:       e.Link,
				Handle:     e.Handle,
				Score:      e.Score,
			})
		}
		data.Sections = append(data.Sections, out)
	}
	return data
}

// Render produces the email body. The result is reduced to ASCII so the
// handle grammar survives whatever mail client echoes it back.
func Render(data Data) (string, error) {
	if data.Open == "" {
		data.Open = "["
	}
	if data.Close == "" {
		data.Close = "]"
	}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, data); err != nil {
		return "", err
	}
	return asciiOnly(buf.String()), nil
}

func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
