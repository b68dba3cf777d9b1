package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mediamail/internal/digest"
	"mediamail/internal/index"
	"mediamail/internal/mailer"
	"mediamail/internal/metrics"
	"mediamail/internal/model"
	"mediamail/internal/report"
)

// Reporter periodically runs an aggregation cycle and mails the rendered
// digest, at most once per period. Each cycle starts from fresh buckets;
// the per-period guard is the only state carried between cycles.
type Reporter struct {
	Engine    *digest.Engine
	Store     *index.Store
	Mailer    *mailer.Mailer
	Topics    []model.Topic
	Title     string
	Frequency string
	Interval  time.Duration // how often to evaluate
	// Bracket pair for rendered handles, matching the reply parser.
	OpenBracket  string
	CloseBracket string
}

func (w *Reporter) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()

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

func (w *Reporter) runOnce(ctx context.Context) {
	period := periodKey(w.Frequency, time.Now().UTC())
	reported, err := w.Store.IsReported(ctx, period)
	if err != nil {
		slog.Error("reporter: check reported state", "period", period, "error", err)
		return
	}
	if reported {
		return
	}
	d := w.Engine.RunCycle(ctx, w.Topics)
	if countEntries(d) == 0 {
		slog.Info("reporter: nothing to report yet", "period", period)
		return
	}
	title := report.ExpandVars(w.Title, time.Now())
	body, err := report.Render(report.Build(d, title, w.OpenBracket, w.CloseBracket))
	if err != nil {
		slog.Error("reporter: render digest", "error", err)
		return
	}
	if err := w.Mailer.Send(ctx, report.Subject, body); err != nil {
		slog.Error("reporter: send digest", "error", err)
		metrics.MailErrors.Inc()
		return
	}
	metrics.MailSends.Inc()
	if err := w.Store.MarkReported(ctx, period); err != nil {
		slog.Error("reporter: mark reported", "period", period, "error", err)
		return
	}
	slog.Info("reporter: digest delivered", "period", period, "entries", countEntries(d))
}

func countEntries(d model.Digest) int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Entries)
	}
	return n
}

func periodKey(freq string, t time.Time) string {
	utc := t.UTC()
	switch freq {
	case "weekly":
		y, w := utc.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	default: // daily
		return utc.Format("2006-01-02")
	}
}
