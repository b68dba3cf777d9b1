package report

import (
	"strings"
	"testing"
	"time"

	"mediamail/internal/handle"
	"mediamail/internal/model"
)

func sampleDigest() model.Digest {
	return model.Digest{Sections: []model.Section{
		{
			Topic: model.Topic{Title: "Go News"},
			Entries: []model.ScoredEntry{
				{Score: 12, Text: "generics are here", Handle: "ab123", Link: "https://example.com/1", AuthorScreenName: "gopher"},
				{Score: 3, Text: "a quieter post", Handle: "cd456"},
			},
		},
		{
			Topic:   model.Topic{Title: "Empty Topic"},
			Entries: nil,
		},
	}}
}

func TestBuildSkipsEmptySections(t *testing.T) {
	data := Build(sampleDigest(), "My Report", "", "")
	if len(data.Sections) != 1 {
		t.Fatalf("expected empty topic to produce no section, got %d sections", len(data.Sections))
	}
	if data.Sections[0].Title != "Go News" {
		t.Fatalf("unexpected section: %+v", data.Sections[0])
	}
}

func TestBuildDefaultsScreenName(t *testing.T) {
	data := Build(sampleDigest(), "My Report", "", "")
	entries := data.Sections[0].Entries
	if entries[0].ScreenName != "gopher" {
		t.Errorf("expected screen name gopher, got %q", entries[0].ScreenName)
	}
	if entries[1].ScreenName != "Unknown" {
		t.Errorf("expected Unknown fallback, got %q", entries[1].ScreenName)
	}
}

func TestRenderBodyFormat(t *testing.T) {
	body, err := Render(Build(sampleDigest(), "My Report", "", ""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(body, "My Report\n") {
		t.Errorf("body should start with the report title, got %q", body[:min(40, len(body))])
	}
	want := "gopher: generics are here (https://example.com/1):[ab123] [12]"
	if !strings.Contains(body, want) {
		t.Errorf("body missing linked entry line %q; body:\n%s", want, body)
	}
	wantNoLink := "Unknown: a quieter post [cd456] [3]"
	if !strings.Contains(body, wantNoLink) {
		t.Errorf("body missing link-less entry line %q; body:\n%s", wantNoLink, body)
	}
}

func TestRenderUsesConfiguredBrackets(t *testing.T) {
	body, err := Render(Build(sampleDigest(), "My Report", "<", ">"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "<ab123>") {
		t.Errorf("expected handle wrapped in configured brackets; body:\n%s", body)
	}
	refs := handle.NewParser(5, "<", ">", nil).Extract(body)
	if len(refs) == 0 || refs[0].Token != "ab123" {
		t.Fatalf("rendered handle should parse back out, got %+v", refs)
	}
}

func TestRenderStripsNonASCII(t *testing.T) {
	data := Data{Title: "Café Report", Sections: []Section{{
		Title:   "T",
		Entries: []Entry{{ScreenName: "a", Text: "snow ☃ day", Handle: "ab123", Score: 1}},
	}}}
	body, err := Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.ContainsRune(body, '☃') || strings.ContainsRune(body, 'é') {
		t.Errorf("expected ASCII-only body, got %q", body)
	}
}

func TestExpandVars(t *testing.T) {
	now := time.Date(2021, 3, 4, 5, 0, 0, 0, time.UTC)
	got := ExpandVars("Digest for {.CurrentDate}", now)
	if got != "Digest for 2021-03-04" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
