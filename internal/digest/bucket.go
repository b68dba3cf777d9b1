package digest

import (
	"sort"

	"mediamail/internal/model"
	"mediamail/internal/scoring"
)

// AdmitOutcome reports what happened to a candidate record.
type AdmitOutcome int

const (
	Admitted AdmitOutcome = iota
	SkippedEmptyContent
	SkippedDuplicate
	SkippedMissingHandle
)

func (o AdmitOutcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case SkippedEmptyContent:
		return "skipped_empty_content"
	case SkippedDuplicate:
		return "skipped_duplicate"
	case SkippedMissingHandle:
		return "skipped_missing_handle"
	default:
		return "unknown"
	}
}

// IsDuplicate reports whether candidate text is already present among the
// admitted entries. The comparison is content-addressed: two records with
// different handles but the same text are duplicates.
func IsDuplicate(text string, entries []model.ScoredEntry) bool {
	for _, e := range entries {
		if e.Text == text {
			return true
		}
	}
	return false
}

// Bucket holds the bounded, score-ordered reply set for one topic.
// Entries are sorted descending by score; ties keep admission order.
type Bucket struct {
	limit   int
	entries []model.ScoredEntry
}

// NewBucket creates a bucket with the given capacity. Non-positive limits
// fall back to the default of 10.
func NewBucket(limit int) *Bucket {
	if limit <= 0 {
		limit = 10
	}
	return &Bucket{limit: limit}
}

// Admit validates, dedups, scores, and inserts a candidate record,
// re-sorting and truncating to capacity. Hit volumes are small (bounded by
// the limit) so a full stable sort per admission keeps this simple.
func (b *Bucket) Admit(rec model.Record, rules scoring.Rules) AdmitOutcome {
	if rec.Text == "" {
		return SkippedEmptyContent
	}
	if IsDuplicate(rec.Text, b.entries) {
		return SkippedDuplicate
	}
	score := rules.Score(rec)
	if rec.Handle == "" {
		// Without a handle the entry cannot be correlated back to its
		// record when the user replies.
		return SkippedMissingHandle
	}
	b.entries = append(b.entries, model.ScoredEntry{
		Score:            score,
		Text:             rec.Text,
		Handle:           rec.Handle,
		Link:             rec.Link,
		AuthorScreenName: rec.AuthorScreenName,
	})
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Score > b.entries[j].Score
	})
	if len(b.entries) > b.limit {
		b.entries = b.entries[:b.limit]
	}
	return Admitted
}

// Len returns the current number of entries.
func (b *Bucket) Len() int { return len(b.entries) }

// Entries returns a read-only snapshot of the current ordered entries.
func (b *Bucket) Entries() []model.ScoredEntry {
	out := make([]model.ScoredEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
