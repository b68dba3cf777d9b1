package index

import (
	"testing"

	"mediamail/internal/model"
)

func TestCompileCriteriaRejectsUnknownClauses(t *testing.T) {
	if _, err := CompileCriteria(map[string]any{"matches": map[string]any{"text": "x"}}); err == nil {
		t.Fatalf("expected error for unknown clause")
	}
	if _, err := CompileCriteria(map[string]any{"min_locality": "high"}); err == nil {
		t.Fatalf("expected error for non-numeric min_locality")
	}
}

func TestMatcherMatchSubstringCaseInsensitive(t *testing.T) {
	m, err := CompileCriteria(map[string]any{
		"match": map[string]any{"text": "SALE"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "big sale today"}) {
		t.Errorf("expected substring match")
	}
	if m.Matches(model.Record{Text: "nothing here"}) {
		t.Errorf("expected no match")
	}
}

func TestCompileCriteriaBareStringTargetsText(t *testing.T) {
	m, err := CompileCriteria(map[string]any{"match": "coffee"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "morning Coffee run"}) {
		t.Errorf("bare match string should substring-match the text")
	}
	if m.Matches(model.Record{Text: "tea only"}) {
		t.Errorf("expected no match")
	}

	m, err = CompileCriteria(map[string]any{"term": "espresso"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "Espresso"}) {
		t.Errorf("bare term string should exact-match the text")
	}
	if m.Matches(model.Record{Text: "espresso machines"}) {
		t.Errorf("bare term must stay exact, not substring")
	}
}

func TestMatcherTermExact(t *testing.T) {
	m, err := CompileCriteria(map[string]any{
		"term": map[string]any{"sentiment": "positive"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "x", Sentiment: "Positive"}) {
		t.Errorf("term match should fold case")
	}
	if m.Matches(model.Record{Text: "x", Sentiment: "positively"}) {
		t.Errorf("term match must be exact, not substring")
	}
}

func TestMatcherHashtagAndReference(t *testing.T) {
	m, err := CompileCriteria(map[string]any{
		"hashtag":   "#deals",
		"reference": []any{"@shop"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok := model.Record{
		Text:       "x",
		Hashtags:   []string{"#Deals", "#other"},
		References: []string{"@shop"},
	}
	if !m.Matches(ok) {
		t.Errorf("expected hashtag+reference match")
	}
	if m.Matches(model.Record{Text: "x", Hashtags: []string{"#Deals"}}) {
		t.Errorf("missing reference should fail the match")
	}
}

func TestMatcherMinLocality(t *testing.T) {
	m, err := CompileCriteria(map[string]any{"min_locality": 0.5})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "x", LocalityConfidence: 1.0}) {
		t.Errorf("confidence 1.0 should pass min 0.5")
	}
	if m.Matches(model.Record{Text: "x", LocalityConfidence: 0.0}) {
		t.Errorf("confidence 0.0 should fail min 0.5")
	}
}

func TestMatcherEmptyCriteriaMatchesEverything(t *testing.T) {
	m, err := CompileCriteria(map[string]any{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "anything"}) {
		t.Errorf("empty criteria should match all records")
	}
}

func TestMatcherAllClausesMustHold(t *testing.T) {
	m, err := CompileCriteria(map[string]any{
		"match": map[string]any{"text": "storm"},
		"term":  map[string]any{"source": "twitter"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Matches(model.Record{Text: "Storm warning", Source: "twitter"}) {
		t.Errorf("expected match when all clauses hold")
	}
	if m.Matches(model.Record{Text: "Storm warning", Source: "rss"}) {
		t.Errorf("expected no match when one clause fails")
	}
}
