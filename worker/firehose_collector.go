package worker

import (
	"context"
	"log/slog"
	"time"

	"mediamail/internal/firehose"
	"mediamail/internal/index"
	"mediamail/internal/metrics"
	"mediamail/internal/platform"

	"golang.org/x/time/rate"
)

// FirehoseCollector polls the platform search API for tracked keywords and
// writes normalized records into the search index.
type FirehoseCollector struct {
	Client     *platform.Client
	Normalizer *firehose.Normalizer
	Store      *index.Store
	Tracks     []string
	Interval   time.Duration
	Limiter    *rate.Limiter
}

func (w *FirehoseCollector) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 5 * time.Minute
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	// initial run
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *FirehoseCollector) runOnce(ctx context.Context) {
	for _, track := range w.Tracks {
		msgs, err := w.Client.Search(ctx, track)
		if err != nil {
			slog.Error("firehose search failed", "track", track, "error", err)
			metrics.IngestErrors.Inc()
			continue
		}
		stored := 0
		for _, raw := range msgs {
			if raw.ID != "" {
				first, err := w.Store.MarkSeen(ctx, raw.ID)
				if err != nil {
					slog.Error("seen-mark failed", "id", raw.ID, "error", err)
					metrics.IngestErrors.Inc()
					continue
				}
				if !first {
					continue
				}
			}
			rec, ok := w.Normalizer.Normalize(ctx, raw)
			if !ok {
				continue
			}
			if w.Limiter != nil {
				if err := w.Limiter.Wait(ctx); err != nil {
					return
				}
			}
			h, err := w.Store.Put(ctx, rec)
			if err != nil {
				slog.Error("index write failed", "id", raw.ID, "error", err)
				metrics.IngestErrors.Inc()
				continue
			}
			metrics.RecordsIngested.Inc()
			slog.Debug("record indexed", "handle", h, "track", track)
			stored++
		}
		slog.Info("firehose collector completed for track", "track", track, "fetched", len(msgs), "stored", stored)
	}
}
