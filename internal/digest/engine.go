package digest

import (
	"context"
	"log/slog"
	"time"

	"mediamail/internal/metrics"
	"mediamail/internal/model"
	"mediamail/internal/scoring"
)

// Hits is a lazy, pull-based sequence of raw search hits. The sequence is
// finite but of unknown length, is not restartable, and is consumed at most
// once. Record decodes the current hit; a decode error means the hit does
// not match the expected record shape.
type Hits interface {
	Next(ctx context.Context) bool
	Record() (model.Record, error)
	Err() error
}

// Searcher is the read side of the search index. It sees only the opaque
// query criteria, never topic titles or hit limits.
type Searcher interface {
	Retrieve(ctx context.Context, criteria map[string]any) (Hits, error)
}

// Engine runs aggregation cycles: one retrieval per configured topic, each
// hit fed through dedup and scoring into that topic's bucket.
type Engine struct {
	searcher Searcher
	rules    scoring.Rules
}

func NewEngine(s Searcher, rules scoring.Rules) *Engine {
	return &Engine{searcher: s, rules: rules}
}

// RunCycle processes every topic in declared order and returns the digest.
// It never fails: topic misconfiguration, retrieval errors, and malformed
// hits are logged and skipped, degrading to a partial (possibly empty)
// digest. Each cycle starts from fresh buckets.
func (e *Engine) RunCycle(ctx context.Context, topics []model.Topic) model.Digest {
	start := time.Now()
	buckets := make(map[string]*Bucket)
	valid := make([]model.Topic, 0, len(topics))
	for _, tp := range topics {
		if tp.Title == "" || len(tp.Criteria) == 0 {
			slog.Warn("skipping topic with missing title or query criteria", "title", tp.Title)
			metrics.TopicsSkipped.Inc()
			continue
		}
		// Buckets are keyed by title and created on first reference, so a
		// repeated title accumulates into one reply set.
		b, ok := buckets[tp.Title]
		if !ok {
			b = NewBucket(tp.HitLimit)
			buckets[tp.Title] = b
		}
		valid = append(valid, tp)

		hits, err := e.searcher.Retrieve(ctx, tp.Criteria)
		if err != nil {
			slog.Error("retrieval failed for topic", "title", tp.Title, "error", err)
			metrics.RetrievalErrors.Inc()
			continue
		}
		for hits.Next(ctx) {
			rec, err := hits.Record()
			if err != nil {
				slog.Debug("dropping malformed hit", "title", tp.Title, "error", err)
				metrics.MalformedHits.Inc()
				continue
			}
			outcome := b.Admit(rec, e.rules)
			metrics.Admissions.WithLabelValues(outcome.String()).Inc()
			if outcome != Admitted {
				slog.Debug("record not admitted", "title", tp.Title, "reason", outcome.String(), "handle", rec.Handle)
			}
		}
		if err := hits.Err(); err != nil {
			// The bucket keeps whatever it accumulated before the failure.
			slog.Error("retrieval aborted for topic", "title", tp.Title, "error", err)
			metrics.RetrievalErrors.Inc()
		}
	}

	d := model.Digest{GeneratedAt: time.Now().UTC()}
	emitted := make(map[string]bool, len(valid))
	for _, tp := range valid {
		if emitted[tp.Title] {
			continue
		}
		emitted[tp.Title] = true
		d.Sections = append(d.Sections, model.Section{
			Topic:   tp,
			Entries: buckets[tp.Title].Entries(),
		})
	}
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	metrics.CyclesRun.Inc()
	return d
}
