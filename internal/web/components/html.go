// Package components holds the HTML components of the token dashboard.
//
// Components are templ.Component values built with templ.ComponentFunc and
// are swapped into the page by HTMX.
package components

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes escaped text.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes name="value" with the value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// vals writes an hx-vals attribute carrying m as JSON.
func (h *htmlWriter) vals(m map[string]string) {
	b, err := json.Marshal(m)
	if err != nil {
		h.err = err
		return
	}
	h.attr("hx-vals", string(b))
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}
