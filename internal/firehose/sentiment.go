package firehose

import (
	"context"
	"strings"
)

// Lexicon is a small word-list sentiment classifier used when no LLM
// classifier is configured. Polarity is the signed share of matched words;
// subjectivity is the share of words that matched either list.
type Lexicon struct{}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "love": {}, "loved": {}, "awesome": {},
	"excellent": {}, "amazing": {}, "happy": {}, "best": {}, "nice": {},
	"win": {}, "wonderful": {}, "fantastic": {}, "glad": {}, "thanks": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "hate": {}, "hated": {}, "awful": {},
	"worst": {}, "sad": {}, "angry": {}, "horrible": {}, "broken": {},
	"lose": {}, "lost": {}, "fail": {}, "failed": {}, "sorry": {},
}

func (Lexicon) Classify(_ context.Context, text string) (float64, float64, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0, 0, nil
	}
	var pos, neg int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	polarity := float64(pos-neg) / float64(len(words))
	subjectivity := float64(pos+neg) / float64(len(words))
	return polarity, subjectivity, nil
}
