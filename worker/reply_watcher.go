package worker

import (
	"context"
	"log/slog"
	"time"

	"mediamail/internal/mailbox"
	"mediamail/internal/responder"
)

// ReplyWatcher polls the reply mailbox and dispatches the commands found
// in each message body.
type ReplyWatcher struct {
	Mailbox   *mailbox.Mailbox
	Responder *responder.Responder
	Interval  time.Duration
}

func (w *ReplyWatcher) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 5 * time.Minute
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

func (w *ReplyWatcher) runOnce(ctx context.Context) {
	bodies, err := w.Mailbox.Fetch()
	if err != nil {
		slog.Error("reply watcher: fetch mail", "error", err)
		return
	}
	for _, body := range bodies {
		n := w.Responder.Process(ctx, body)
		slog.Debug("processed reply message", "actions", n)
	}
}
