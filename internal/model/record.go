package model

import "time"

// Record is a normalized unit of social-media content as stored in the
// search index. Text and Handle are required; everything else is optional
// metadata carried for rendering and later reply correlation.
type Record struct {
	Handle             string    `json:"mmid"`
	PlatformID         string    `json:"platform_id,omitempty"`
	Text               string    `json:"text"`
	AuthorName         string    `json:"author_name,omitempty"`
	AuthorScreenName   string    `json:"author_screen_name,omitempty"`
	AuthorLocation     string    `json:"author_location,omitempty"`
	Link               string    `json:"url,omitempty"`
	Source             string    `json:"source,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
	Hashtags           []string  `json:"hashtags,omitempty"`
	References         []string  `json:"references,omitempty"`
	Tokens             []string  `json:"tokens,omitempty"`
	Location           string    `json:"location,omitempty"`
	PlaceName          string    `json:"place_name,omitempty"`
	PlaceFullName      string    `json:"place_full_name,omitempty"`
	LocalityConfidence float64   `json:"locality_confidence,omitempty"`
	Sentiment          string    `json:"sentiment,omitempty"`
	Polarity           float64   `json:"polarity,omitempty"`
	Subjectivity       float64   `json:"subjectivity,omitempty"`
}

// Valid reports whether the record carries the fields required for
// scoring and reply correlation.
func (r Record) Valid() bool {
	return r.Text != "" && r.Handle != ""
}

// ScoredEntry decorates the presentable subset of a Record with its score.
type ScoredEntry struct {
	Score            int    `json:"score"`
	Text             string `json:"text"`
	Handle           string `json:"mmid"`
	Link             string `json:"link,omitempty"`
	AuthorScreenName string `json:"author_screen_name,omitempty"`
}

// Topic is one configured, named search query. Criteria is opaque to the
// aggregation core; only the index interprets it.
type Topic struct {
	Title    string
	Criteria map[string]any
	HitLimit int
}

// Section pairs a topic with its ranked entries for one cycle.
type Section struct {
	Topic   Topic
	Entries []ScoredEntry
}

// Digest is the ordered per-topic result of one aggregation cycle.
type Digest struct {
	GeneratedAt time.Time
	Sections    []Section
}
