// Package markdown renders category summaries for the terminal. Rendering
// never fails from the caller's point of view: any problem yields the raw
// text instead.
package markdown

import (
	"fmt"
	"strings"
	gosync "sync"

	"github.com/charmbracelet/glamour"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "dark"

// Rendered is the outcome of a render. Formatted is false when Text is the
// raw input because rendering failed.
type Rendered struct {
	Text      string
	Formatted bool
	Err       error
}

type renderFunc func(md string, width int) (string, error)

// Renderer formats markdown with glamour, one term renderer per width.
type Renderer struct {
	style  string
	render renderFunc

	mu    gosync.Mutex
	cache map[int]*glamour.TermRenderer
}

// New creates a renderer using the named glamour standard style.
func New(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	r := &Renderer{
		style: style,
		cache: make(map[int]*glamour.TermRenderer),
	}
	r.render = r.glamourRender
	return r
}

// Render formats md for the given width. Empty input renders as empty
// text.
func (r *Renderer) Render(md string, width int) (out Rendered) {
	if strings.TrimSpace(md) == "" {
		return Rendered{Text: "", Formatted: true}
	}

	defer func() {
		if p := recover(); p != nil {
			out = Rendered{
				Text: md,
				Err:  fmt.Errorf("markdown renderer panicked: %v", p),
			}
		}
	}()

	text, err := r.render(md, width)
	if err != nil {
		return Rendered{Text: md, Err: err}
	}
	return Rendered{Text: strings.TrimRight(text, "\n"), Formatted: true}
}

func (r *Renderer) glamourRender(md string, width int) (string, error) {
	tr, err := r.termRenderer(width)
	if err != nil {
		return "", err
	}
	return tr.Render(md)
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.cache[width]; ok {
		return tr, nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	r.cache[width] = tr
	return tr, nil
}
