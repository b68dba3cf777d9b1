// Package mailbox fetches reply emails from the user's POP3 mailbox and
// reduces them to plain text for handle parsing.
package mailbox

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"mediamail/internal/config"

	"github.com/emersion/go-message"
	"github.com/knadh/go-pop3"
)

type Mailbox struct {
	cfg config.EmailConfig
}

func New(cfg config.EmailConfig) *Mailbox {
	return &Mailbox{cfg: cfg}
}

// Fetch downloads every pending message, returns their plain-text bodies,
// and deletes successfully read messages so replies are processed once.
func (m *Mailbox) Fetch() ([]string, error) {
	client := pop3.New(pop3.Opt{
		Host:       m.cfg.POP3Host,
		Port:       m.cfg.POP3Port,
		TLSEnabled: m.cfg.POP3TLS,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Quit()
	if err := conn.Auth(m.cfg.POP3Username, m.cfg.POP3Password); err != nil {
		return nil, err
	}
	ids, err := conn.List(0)
	if err != nil {
		return nil, err
	}
	var bodies []string
	for _, id := range ids {
		entity, err := conn.Retr(id.ID)
		if err != nil {
			slog.Warn("failed to retrieve mail message", "id", id.ID, "error", err)
			continue
		}
		body := textBody(entity)
		if strings.TrimSpace(body) == "" {
			continue
		}
		bodies = append(bodies, body)
		if err := conn.Dele(id.ID); err != nil {
			slog.Warn("failed to delete processed mail message", "id", id.ID, "error", err)
		}
	}
	return bodies, nil
}

// textBody extracts the text/plain content of a message, walking multipart
// bodies and falling back to the raw body for single-part messages.
func textBody(e *message.Entity) string {
	mr := e.MultipartReader()
	if mr == nil {
		b, _ := io.ReadAll(e.Body)
		return string(b)
	}
	var sb strings.Builder
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}
		ct, _, _ := part.Header.ContentType()
		if ct == "" || strings.HasPrefix(ct, "text/plain") {
			b, _ := io.ReadAll(part.Body)
			sb.Write(b)
		}
	}
	return sb.String()
}
