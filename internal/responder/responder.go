// Package responder turns reply emails into platform actions. It scans a
// message body for bracketed content handles, resolves each handle to its
// indexed record, and dispatches the command that followed the handle.
package responder

import (
	"context"
	"log/slog"
	"strings"

	"mediamail/internal/handle"
	"mediamail/internal/metrics"
	"mediamail/internal/model"
)

// Actor performs reply actions against the originating platform.
type Actor interface {
	Like(ctx context.Context, id string) error
	Reply(ctx context.Context, id, text string) error
}

// Resolver resolves a content handle back to its indexed record.
type Resolver interface {
	Get(ctx context.Context, h string) (model.Record, error)
}

// Command is one parsed instruction from a reply body.
type Command struct {
	Handle string
	Verb   string // "like" or "reply"
	Text   string // reply text, for "reply"
}

// ParseCommand interprets the text following a handle reference. The first
// word is the verb; "reply" consumes the rest of the segment as its text.
func ParseCommand(ref handle.Ref) (Command, bool) {
	rest := strings.TrimSpace(ref.Remainder)
	if rest == "" {
		return Command{}, false
	}
	verb, text, _ := strings.Cut(rest, " ")
	switch strings.ToLower(verb) {
	case "like":
		return Command{Handle: ref.Token, Verb: "like"}, true
	case "reply":
		text = strings.TrimSpace(text)
		if text == "" {
			return Command{}, false
		}
		return Command{Handle: ref.Token, Verb: "reply", Text: text}, true
	default:
		return Command{}, false
	}
}

type Responder struct {
	parser   *handle.Parser
	resolver Resolver
	actor    Actor
}

func New(parser *handle.Parser, resolver Resolver, actor Actor) *Responder {
	return &Responder{parser: parser, resolver: resolver, actor: actor}
}

// Process scans one mail body and dispatches every valid command. Returns
// the number of actions performed; individual failures are logged and do
// not stop the scan.
func (r *Responder) Process(ctx context.Context, body string) int {
	done := 0
	for _, ref := range r.parser.Extract(body) {
		cmd, ok := ParseCommand(ref)
		if !ok {
			slog.Debug("handle reference without a recognized command", "handle", ref.Token)
			continue
		}
		rec, err := r.resolver.Get(ctx, cmd.Handle)
		if err != nil {
			slog.Warn("could not resolve handle from reply", "handle", cmd.Handle, "error", err)
			continue
		}
		if rec.PlatformID == "" {
			slog.Warn("record has no platform id, cannot act on it", "handle", cmd.Handle)
			continue
		}
		switch cmd.Verb {
		case "like":
			err = r.actor.Like(ctx, rec.PlatformID)
		case "reply":
			err = r.actor.Reply(ctx, rec.PlatformID, cmd.Text)
		}
		if err != nil {
			slog.Error("platform action failed", "verb", cmd.Verb, "handle", cmd.Handle, "error", err)
			continue
		}
		metrics.RepliesProcessed.Inc()
		slog.Info("dispatched reply action", "verb", cmd.Verb, "handle", cmd.Handle)
		done++
	}
	return done
}
