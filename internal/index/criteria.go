package index

import (
	"fmt"
	"strings"

	"mediamail/internal/model"

	"github.com/spf13/cast"
)

// Matcher is a compiled query criteria document. The criteria payload is
// opaque to the aggregation engine; this is the one place its shape is
// interpreted.
//
// Supported clauses:
//
//	match:        field -> case-insensitive substring of the field value;
//	              a bare string is shorthand for {text: s}
//	term:         field -> case-insensitive exact field value;
//	              same bare-string shorthand
//	hashtag:      string or list; membership in record hashtags
//	reference:    string or list; membership in record references
//	min_locality: float; minimum locality confidence
type Matcher struct {
	match       map[string]string
	term        map[string]string
	hashtags    []string
	references  []string
	minLocality float64
	hasLocality bool
}

// CompileCriteria validates and compiles a raw criteria payload. Unknown
// clauses are an error so a typo in the configuration surfaces as a skipped
// topic instead of a silently empty one.
func CompileCriteria(criteria map[string]any) (*Matcher, error) {
	m := &Matcher{}
	for clause, v := range criteria {
		switch clause {
		case "match", "term":
			var fields map[string]string
			if s, ok := v.(string); ok {
				// Bare string targets the record text.
				fields = map[string]string{"text": s}
			} else {
				var err error
				fields, err = cast.ToStringMapStringE(v)
				if err != nil {
					return nil, fmt.Errorf("criteria %q must be a string or map fields to strings: %w", clause, err)
				}
			}
			lowered := make(map[string]string, len(fields))
			for f, s := range fields {
				lowered[f] = strings.ToLower(s)
			}
			if clause == "match" {
				m.match = lowered
			} else {
				m.term = lowered
			}
		case "hashtag":
			vals, err := stringList(v)
			if err != nil {
				return nil, fmt.Errorf("criteria %q: %w", clause, err)
			}
			m.hashtags = vals
		case "reference":
			vals, err := stringList(v)
			if err != nil {
				return nil, fmt.Errorf("criteria %q: %w", clause, err)
			}
			m.references = vals
		case "min_locality":
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return nil, fmt.Errorf("criteria %q must be numeric: %w", clause, err)
			}
			m.minLocality = f
			m.hasLocality = true
		default:
			return nil, fmt.Errorf("unknown criteria clause %q", clause)
		}
	}
	return m, nil
}

// Matches reports whether a record satisfies every clause.
func (m *Matcher) Matches(rec model.Record) bool {
	for field, want := range m.match {
		got, ok := fieldValue(rec, field)
		if !ok || !strings.Contains(strings.ToLower(got), want) {
			return false
		}
	}
	for field, want := range m.term {
		got, ok := fieldValue(rec, field)
		if !ok || strings.ToLower(got) != want {
			return false
		}
	}
	for _, tag := range m.hashtags {
		if !containsFold(rec.Hashtags, tag) {
			return false
		}
	}
	for _, ref := range m.references {
		if !containsFold(rec.References, ref) {
			return false
		}
	}
	if m.hasLocality && rec.LocalityConfidence < m.minLocality {
		return false
	}
	return true
}

func fieldValue(rec model.Record, field string) (string, bool) {
	switch field {
	case "text":
		return rec.Text, true
	case "author_screen_name":
		return rec.AuthorScreenName, true
	case "author_name":
		return rec.AuthorName, true
	case "author_location":
		return rec.AuthorLocation, true
	case "source":
		return rec.Source, true
	case "sentiment":
		return rec.Sentiment, true
	case "place_name":
		return rec.PlaceName, true
	case "place_full_name":
		return rec.PlaceFullName, true
	default:
		return "", false
	}
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	default:
		vals, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("expected string or list of strings: %w", err)
		}
		return vals, nil
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
