package config

import "testing"

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	if c.Index.HandleWidth != 5 {
		t.Errorf("handle width = %d, want 5", c.Index.HandleWidth)
	}
	if c.Index.OpenBracket != "[" || c.Index.CloseBracket != "]" {
		t.Errorf("brackets = %q %q, want [ ]", c.Index.OpenBracket, c.Index.CloseBracket)
	}
	if len(c.Index.ReservedTokens) != 1 || c.Index.ReservedTokens[0] != "class" {
		t.Errorf("reserved tokens = %v, want [class]", c.Index.ReservedTokens)
	}
	if c.Report.Frequency != "daily" {
		t.Errorf("frequency = %q, want daily", c.Report.Frequency)
	}
}

func TestFillDefaultsHitLimit(t *testing.T) {
	c := Config{Queries: []QueryConfig{
		{Title: "a"},
		{Title: "b", HitLimit: 3},
		{Title: "c", HitLimit: -1},
	}}
	c.FillDefaults()

	want := []int{10, 3, 10}
	for i, q := range c.Queries {
		if q.HitLimit != want[i] {
			t.Errorf("query %q hit_limit = %d, want %d", q.Title, q.HitLimit, want[i])
		}
	}
}

func TestTopicsPreservesOrderAndCriteria(t *testing.T) {
	c := Config{Queries: []QueryConfig{
		{Title: "first", Query: map[string]any{"match": "x"}, HitLimit: 2},
		{Title: "second", Query: map[string]any{"term": "y"}, HitLimit: 5},
	}}

	topics := c.Topics()
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	if topics[0].Title != "first" || topics[1].Title != "second" {
		t.Errorf("order not preserved: %q, %q", topics[0].Title, topics[1].Title)
	}
	if topics[0].Criteria["match"] != "x" {
		t.Errorf("criteria not carried: %v", topics[0].Criteria)
	}
	if topics[1].HitLimit != 5 {
		t.Errorf("hit limit = %d, want 5", topics[1].HitLimit)
	}
}
