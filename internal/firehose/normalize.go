// Package firehose turns raw platform messages into normalized records
// ready for the search index: word filters, tokenization, hashtag and
// reference extraction, locality confidence, and sentiment.
package firehose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mediamail/internal/config"
	"mediamail/internal/model"
)

// RawMessage is the platform's wire shape for one post.
type RawMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
		Location   string `json:"location"`
	} `json:"user"`
	Geo *struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geo"`
	Place *struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"place"`
}

// Classifier scores the sentiment of a text: polarity in [-1,1] and
// subjectivity in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (polarity, subjectivity float64, err error)
}

// minTokenLen drops short filler words during tokenization.
const minTokenLen = 4

type Normalizer struct {
	source     string
	filters    config.FilterConfig
	localTerms []string
	classifier Classifier

	common map[string]struct{}
}

func NewNormalizer(source string, cfg config.FirehoseConfig, classifier Classifier) *Normalizer {
	common := make(map[string]struct{}, len(cfg.Filters.CommonWords))
	for _, w := range cfg.Filters.CommonWords {
		common[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{
		source:     source,
		filters:    cfg.Filters,
		localTerms: cfg.LocalTerms,
		classifier: classifier,
		common:     common,
	}
}

// Normalize converts one raw message into a record. The second return is
// false when the message is dropped: no text, a blacklisted word present,
// or a whitelisted word absent.
func (n *Normalizer) Normalize(ctx context.Context, raw RawMessage) (model.Record, bool) {
	if raw.Text == "" {
		return model.Record{}, false
	}
	lower := strings.ToLower(raw.Text)
	for _, w := range n.filters.BlacklistWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			slog.Debug("message contains blacklisted word, dropping", "word", w)
			return model.Record{}, false
		}
	}
	for _, w := range n.filters.WhitelistWords {
		if !strings.Contains(lower, strings.ToLower(w)) {
			slog.Debug("message missing whitelisted word, dropping", "word", w)
			return model.Record{}, false
		}
	}

	tokens, hashtags, references := n.tokenize(raw.Text)

	rec := model.Record{
		PlatformID:       raw.ID,
		Text:             raw.Text,
		Link:             raw.URL,
		Source:           n.source,
		AuthorName:       raw.User.Name,
		AuthorScreenName: raw.User.ScreenName,
		AuthorLocation:   raw.User.Location,
		Tokens:           tokens,
		Hashtags:         hashtags,
		References:       references,
	}
	if raw.CreatedAt != "" {
		if t, err := time.Parse(time.RubyDate, raw.CreatedAt); err == nil {
			rec.CreatedAt = t.UTC()
		}
	}
	if raw.Geo != nil && len(raw.Geo.Coordinates) >= 2 {
		rec.Location = fmt.Sprintf("%v,%v", raw.Geo.Coordinates[0], raw.Geo.Coordinates[1])
	}
	if raw.Place != nil {
		rec.PlaceName = raw.Place.Name
		rec.PlaceFullName = raw.Place.FullName
	}
	rec.LocalityConfidence = n.localityConfidence(raw)

	if n.classifier != nil {
		polarity, subjectivity, err := n.classifier.Classify(ctx, raw.Text)
		if err != nil {
			slog.Warn("sentiment classification failed", "error", err)
		} else {
			rec.Polarity = polarity
			rec.Subjectivity = subjectivity
			rec.Sentiment = sentimentLabel(polarity)
		}
	}
	return rec, true
}

// tokenize lower-cases and splits on single spaces, drops tokens holding an
// apostrophe, configured common words, and short tokens, and pulls out
// @references and #hashtags with their marks retained.
func (n *Normalizer) tokenize(text string) (tokens, hashtags, references []string) {
	for _, token := range strings.Split(strings.ToLower(text), " ") {
		if strings.Contains(token, "'") {
			continue
		}
		if _, ok := n.common[token]; ok {
			continue
		}
		if len(token) < minTokenLen {
			continue
		}
		if strings.HasPrefix(token, "@") {
			references = append(references, token)
			token = token[1:]
		}
		if strings.HasPrefix(token, "#") {
			hashtags = append(hashtags, token)
			token = token[1:]
		}
		tokens = append(tokens, token)
	}
	return tokens, hashtags, references
}

// localityConfidence is binary for now: 1.0 when any configured local term
// appears in the author location or place fields, else 0.0.
func (n *Normalizer) localityConfidence(raw RawMessage) float64 {
	if len(n.localTerms) == 0 {
		return 0
	}
	var fields []string
	fields = append(fields, raw.User.Location)
	if raw.Place != nil {
		fields = append(fields, raw.Place.Name, raw.Place.FullName)
	}
	for _, term := range n.localTerms {
		lt := strings.ToLower(term)
		for _, f := range fields {
			if f != "" && strings.Contains(strings.ToLower(f), lt) {
				return 1.0
			}
		}
	}
	return 0
}

func sentimentLabel(polarity float64) string {
	switch {
	case polarity < 0:
		return "negative"
	case polarity > 0:
		return "positive"
	default:
		return "neutral"
	}
}
