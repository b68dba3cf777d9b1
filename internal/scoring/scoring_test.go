package scoring

import (
	"testing"

	"mediamail/internal/config"
	"mediamail/internal/model"
)

func TestScorePointsPerWord(t *testing.T) {
	r := Compile(config.ScoringConfig{PointsPerWord: 1}, nil)
	got := r.Score(model.Record{Text: "a b c", Handle: "00001"})
	if got != 3 {
		t.Fatalf("expected score 3, got %d", got)
	}
}

func TestScoreInterestedWordsCaseInsensitive(t *testing.T) {
	r := Compile(config.ScoringConfig{
		InterestedWords: map[string]any{"sale": 10},
	}, nil)
	got := r.Score(model.Record{Text: "Big SALE today", Handle: "00001"})
	if got != 10 {
		t.Fatalf("expected score 10, got %d", got)
	}
}

func TestScoreDisinterestedWordsSubtract(t *testing.T) {
	r := Compile(config.ScoringConfig{
		PointsPerWord:      1,
		DisinterestedWords: map[string]any{"spam": 5},
	}, nil)
	got := r.Score(model.Record{Text: "pure spam here", Handle: "00001"})
	if got != 3-5 {
		t.Fatalf("expected score -2, got %d", got)
	}
}

func TestScoreLocalityTruncatesTowardZero(t *testing.T) {
	// 10 * 0.25 = 2.5; the fractional part is dropped when summed into
	// the integer accumulator.
	r := Compile(config.ScoringConfig{LocalityMultiplier: 10}, nil)
	got := r.Score(model.Record{Text: "x", Handle: "00001", LocalityConfidence: 0.25})
	if got != 2 {
		t.Fatalf("expected truncated score 2, got %d", got)
	}
}

func TestScoreHashtagAndReferenceVolume(t *testing.T) {
	r := Compile(config.ScoringConfig{
		HashtagWeight:   3,
		ReferenceWeight: -2,
	}, nil)
	rec := model.Record{
		Text:       "hello",
		Handle:     "00001",
		Hashtags:   []string{"#go", "#redis"},
		References: []string{"@somebody"},
	}
	if got := r.Score(rec); got != 2*3-2 {
		t.Fatalf("expected score 4, got %d", got)
	}
}

func TestScoreSelfMentions(t *testing.T) {
	// Weight applies once per configured handle per matching reference.
	r := Compile(config.ScoringConfig{ReferenceToMeWeight: 7},
		[]string{"MyName"})
	rec := model.Record{
		Text:       "hi",
		Handle:     "00001",
		References: []string{"@myname", "@myname_alt", "@other"},
	}
	if got := r.Score(rec); got != 14 {
		t.Fatalf("expected score 14, got %d", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	r := Compile(config.ScoringConfig{
		PointsPerWord:   2,
		InterestedWords: map[string]any{"go": 1, "redis": 4},
	}, []string{"me"})
	rec := model.Record{Text: "go loves redis", Handle: "00001"}
	first := r.Score(rec)
	for i := 0; i < 10; i++ {
		if got := r.Score(rec); got != first {
			t.Fatalf("score changed between calls: %d vs %d", first, got)
		}
	}
}

func TestCompileSkipsNonNumericWeights(t *testing.T) {
	r := Compile(config.ScoringConfig{
		PointsPerWord:   "lots",
		InterestedWords: map[string]any{"sale": "many", "deal": 2},
	}, nil)
	if r.PointsPerWord != 0 {
		t.Errorf("non-numeric points_per_word should compile to 0, got %d", r.PointsPerWord)
	}
	if _, ok := r.Interested["sale"]; ok {
		t.Errorf("non-numeric keyword points should be dropped")
	}
	if got := r.Score(model.Record{Text: "big deal", Handle: "00001"}); got != 2 {
		t.Fatalf("expected score 2 from the surviving keyword, got %d", got)
	}
}

func TestCompileEmptySectionScoresZero(t *testing.T) {
	r := Compile(config.ScoringConfig{}, nil)
	rec := model.Record{
		Text:               "anything at all",
		Handle:             "00001",
		Hashtags:           []string{"#x"},
		References:         []string{"@y"},
		LocalityConfidence: 1.0,
	}
	if got := r.Score(rec); got != 0 {
		t.Fatalf("expected score 0 with empty scoring config, got %d", got)
	}
}
