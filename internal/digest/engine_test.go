package digest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mediamail/internal/model"
)

// fakeHit is either a well-formed record or a malformed payload.
type fakeHit struct {
	rec model.Record
	err error
}

type fakeHits struct {
	hits     []fakeHit
	pos      int
	finalErr error
}

func (h *fakeHits) Next(ctx context.Context) bool {
	if h.pos >= len(h.hits) {
		return false
	}
	h.pos++
	return true
}

func (h *fakeHits) Record() (model.Record, error) {
	cur := h.hits[h.pos-1]
	return cur.rec, cur.err
}

func (h *fakeHits) Err() error { return h.finalErr }

// fakeSearcher serves canned hit sequences keyed by the criteria's "match"
// value and records every criteria payload it was asked for.
type fakeSearcher struct {
	hits     map[string][]fakeHit
	failures map[string]error
	asked    []map[string]any
}

func (s *fakeSearcher) Retrieve(ctx context.Context, criteria map[string]any) (Hits, error) {
	s.asked = append(s.asked, criteria)
	key := fmt.Sprint(criteria["match"])
	if err, ok := s.failures[key]; ok {
		return nil, err
	}
	return &fakeHits{hits: s.hits[key]}, nil
}

func topic(title, match string, limit int) model.Topic {
	return model.Topic{Title: title, Criteria: map[string]any{"match": match}, HitLimit: limit}
}

func TestRunCycleBuildsOrderedDigest(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]fakeHit{
		"go": {
			{rec: rec("aaaaa", words(5))},
			{rec: rec("bbbbb", words(10))},
			{rec: rec("ccccc", words(1))},
		},
		"redis": {
			{rec: rec("ddddd", words(2))},
		},
	}}
	e := NewEngine(s, perWordRules())
	d := e.RunCycle(context.Background(), []model.Topic{
		topic("Go News", "go", 2),
		topic("Redis News", "redis", 10),
	})
	if len(d.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(d.Sections))
	}
	if d.Sections[0].Topic.Title != "Go News" || d.Sections[1].Topic.Title != "Redis News" {
		t.Fatalf("sections must preserve configured topic order: %+v", d.Sections)
	}
	got := d.Sections[0].Entries
	if len(got) != 2 || got[0].Score != 10 || got[1].Score != 5 {
		t.Fatalf("expected top-2 scores [10 5], got %+v", got)
	}
	if len(d.Sections[1].Entries) != 1 {
		t.Fatalf("expected 1 entry in second section, got %d", len(d.Sections[1].Entries))
	}
}

func TestRunCycleSkipsInvalidTopics(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]fakeHit{
		"ok": {{rec: rec("aaaaa", "good news everyone")}},
	}}
	e := NewEngine(s, perWordRules())
	d := e.RunCycle(context.Background(), []model.Topic{
		{Title: "No Criteria"},
		{Criteria: map[string]any{"match": "untitled"}},
		topic("Valid", "ok", 10),
	})
	if len(d.Sections) != 1 {
		t.Fatalf("expected only the valid topic's section, got %d", len(d.Sections))
	}
	if d.Sections[0].Topic.Title != "Valid" || len(d.Sections[0].Entries) != 1 {
		t.Fatalf("valid topic should still produce a populated bucket: %+v", d.Sections[0])
	}
	// Only the valid topic should have reached the searcher.
	if len(s.asked) != 1 {
		t.Fatalf("expected 1 retrieval, got %d", len(s.asked))
	}
}

func TestRunCycleStripsTopicMetadataFromCriteria(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]fakeHit{}}
	e := NewEngine(s, perWordRules())
	e.RunCycle(context.Background(), []model.Topic{topic("Secret Title", "anything", 3)})
	if len(s.asked) != 1 {
		t.Fatalf("expected 1 retrieval, got %d", len(s.asked))
	}
	criteria := s.asked[0]
	if len(criteria) != 1 || criteria["match"] != "anything" {
		t.Fatalf("searcher must only ever see the query criteria, got %+v", criteria)
	}
}

func TestRunCycleDropsMalformedHits(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]fakeHit{
		"q": {
			{err: errors.New("no text key")},
			{rec: rec("aaaaa", "still processed")},
		},
	}}
	e := NewEngine(s, perWordRules())
	d := e.RunCycle(context.Background(), []model.Topic{topic("T", "q", 10)})
	if len(d.Sections) != 1 || len(d.Sections[0].Entries) != 1 {
		t.Fatalf("malformed hit should be dropped and the rest processed: %+v", d.Sections)
	}
	if d.Sections[0].Entries[0].Handle != "aaaaa" {
		t.Fatalf("unexpected surviving entry: %+v", d.Sections[0].Entries[0])
	}
}

func TestRunCycleIsolatesRetrievalFailures(t *testing.T) {
	s := &fakeSearcher{
		hits:     map[string][]fakeHit{"good": {{rec: rec("aaaaa", "fine")}}},
		failures: map[string]error{"bad": errors.New("connection refused")},
	}
	e := NewEngine(s, perWordRules())
	d := e.RunCycle(context.Background(), []model.Topic{
		topic("Broken", "bad", 5),
		topic("Healthy", "good", 5),
	})
	if len(d.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(d.Sections))
	}
	if len(d.Sections[0].Entries) != 0 {
		t.Errorf("failed topic should have an empty bucket, got %+v", d.Sections[0].Entries)
	}
	if len(d.Sections[1].Entries) != 1 {
		t.Errorf("failure must not affect later topics, got %+v", d.Sections[1].Entries)
	}
}

func TestRunCycleDedupsAcrossHits(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]fakeHit{
		"q": {
			{rec: rec("aaaaa", "identical message body")},
			{rec: rec("bbbbb", "identical message body")},
		},
	}}
	e := NewEngine(s, perWordRules())
	d := e.RunCycle(context.Background(), []model.Topic{topic("T", "q", 10)})
	if n := len(d.Sections[0].Entries); n != 1 {
		t.Fatalf("expected 1 entry after dedup, got %d", n)
	}
}
