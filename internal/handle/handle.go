// Package handle implements content handles: the short identifiers that
// correlate a digest entry back to its indexed record. A handle is a
// fixed-width base-36 token derived from a monotonic nanosecond counter,
// so uniqueness is probabilistic within one modulus rollover window.
package handle

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Generator produces fixed-width handles. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	width   int
	modulus int64
	last    int64
}

// NewGenerator creates a generator for handles of the given base-36 width.
func NewGenerator(width int) *Generator {
	if width <= 0 {
		width = 5
	}
	mod := int64(1)
	for i := 0; i < width; i++ {
		mod *= 36
	}
	return &Generator{width: width, modulus: mod}
}

// Next returns a new handle. The underlying counter is strictly
// increasing, so calling Next again after a key collision yields a
// perturbed value.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := time.Now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return g.encode(n % g.modulus)
}

func (g *Generator) encode(v int64) string {
	s := strconv.FormatInt(v, 36)
	if len(s) < g.width {
		s = strings.Repeat("0", g.width-len(s)) + s
	}
	return s
}

// Ref is one handle reference found in reply text, together with the text
// that followed its closing bracket (the command payload).
type Ref struct {
	Token     string
	Remainder string
}

// Parser extracts bracketed handle references from free-form text.
//
// Grammar: an opening bracket, exactly width alphanumeric characters, then
// a closing bracket. Tokens on the reserved list are skipped; anything not
// matching the grammar is ignored rather than reported.
type Parser struct {
	width    int
	open     string
	close    string
	reserved map[string]struct{}
}

func NewParser(width int, open, close string, reserved []string) *Parser {
	if width <= 0 {
		width = 5
	}
	if open == "" {
		open = "["
	}
	if close == "" {
		close = "]"
	}
	rs := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		rs[strings.ToLower(r)] = struct{}{}
	}
	return &Parser{width: width, open: open, close: close, reserved: rs}
}

// Extract returns every valid handle reference in text, in order.
func (p *Parser) Extract(text string) []Ref {
	var out []Ref
	parts := strings.Split(text, p.open)
	// parts[0] precedes the first opening bracket and cannot hold a token.
	for _, part := range parts[1:] {
		if len(part) < p.width+len(p.close) {
			continue
		}
		if part[p.width:p.width+len(p.close)] != p.close {
			continue
		}
		token := part[:p.width]
		if !alphanumeric(token) {
			continue
		}
		if _, ok := p.reserved[strings.ToLower(token)]; ok {
			continue
		}
		out = append(out, Ref{
			Token:     token,
			Remainder: part[p.width+len(p.close):],
		})
	}
	return out
}

func alphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
