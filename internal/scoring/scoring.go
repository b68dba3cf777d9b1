package scoring

import (
	"log/slog"
	"strings"

	"mediamail/internal/config"
	"mediamail/internal/model"

	"github.com/spf13/cast"
)

// Rules is the compiled, fully typed scoring rule set. All contributions
// are additive and independently optional; a zero value scores every
// record as 0.
type Rules struct {
	PointsPerWord       int
	LocalityMultiplier  float64
	HashtagWeight       int
	ReferenceWeight     int
	ReferenceToMeWeight int
	Interested          map[string]int
	Disinterested       map[string]int
	MyHandles           []string
}

// Compile normalizes the raw scoring section into Rules. Malformed weight
// values are logged and dropped rather than failing the load; an entirely
// absent section compiles to the zero rule set.
func Compile(sc config.ScoringConfig, myHandles []string) Rules {
	r := Rules{
		PointsPerWord:       intWeight("points_per_word", sc.PointsPerWord),
		LocalityMultiplier:  floatWeight("locality_multiplier", sc.LocalityMultiplier),
		HashtagWeight:       intWeight("hashtag_weight", sc.HashtagWeight),
		ReferenceWeight:     intWeight("reference_weight", sc.ReferenceWeight),
		ReferenceToMeWeight: intWeight("reference_to_me_weight", sc.ReferenceToMeWeight),
		Interested:          keywordPoints("interested_words", sc.InterestedWords),
		Disinterested:       keywordPoints("disinterested_words", sc.DisinterestedWords),
		MyHandles:           myHandles,
	}
	if r.isZero() {
		slog.Warn("no usable scoring configuration; all records will score 0")
	}
	return r
}

func (r Rules) isZero() bool {
	return r.PointsPerWord == 0 && r.LocalityMultiplier == 0 &&
		r.HashtagWeight == 0 && r.ReferenceWeight == 0 &&
		r.ReferenceToMeWeight == 0 &&
		len(r.Interested) == 0 && len(r.Disinterested) == 0
}

// Score computes the integer relevance score of a record. Deterministic and
// total: it never fails, and missing record fields contribute 0.
//
// The locality term is the only fractional contribution; it is truncated
// toward zero when summed into the integer accumulator.
func (r Rules) Score(rec model.Record) int {
	score := 0
	if rec.Text != "" && r.PointsPerWord != 0 {
		// Word count is a plain single-space split, matching how the
		// firehose tokenizes.
		score += len(strings.Split(rec.Text, " ")) * r.PointsPerWord
	}
	score += int(r.LocalityMultiplier * rec.LocalityConfidence)
	lower := strings.ToLower(rec.Text)
	for word, pts := range r.Interested {
		if strings.Contains(lower, word) {
			score += pts
		}
	}
	for word, pts := range r.Disinterested {
		if strings.Contains(lower, word) {
			score -= pts
		}
	}
	score += len(rec.Hashtags) * r.HashtagWeight
	score += len(rec.References) * r.ReferenceWeight
	if r.ReferenceToMeWeight != 0 {
		for _, h := range r.MyHandles {
			lh := strings.ToLower(h)
			if lh == "" {
				continue
			}
			for _, ref := range rec.References {
				if strings.Contains(strings.ToLower(ref), lh) {
					score += r.ReferenceToMeWeight
				}
			}
		}
	}
	return score
}

func intWeight(name string, v any) int {
	if v == nil {
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		slog.Debug("skipping non-numeric scoring weight", "rule", name, "value", v)
		return 0
	}
	return n
}

func floatWeight(name string, v any) float64 {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		slog.Debug("skipping non-numeric scoring weight", "rule", name, "value", v)
		return 0
	}
	return f
}

func keywordPoints(name string, m map[string]any) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for word, v := range m {
		pts, err := cast.ToIntE(v)
		if err != nil {
			slog.Debug("skipping non-numeric keyword points", "rule", name, "word", word, "value", v)
			continue
		}
		out[strings.ToLower(word)] = pts
	}
	return out
}
