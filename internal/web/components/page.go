package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// HTMXSource is the script tag source for HTMX.
const HTMXSource = "https://unpkg.com/htmx.org@2.0.4"

const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

// ContentData is the filter bar plus either the grid or a loading skeleton.
type ContentData struct {
	Controls grid.Controls
	Grid     GridData
	// Loading shows a skeleton of SkeletonColumns columns instead of Grid.
	Loading         bool
	SkeletonColumns int
}

// Content renders the swappable dashboard body.
func Content(d ContentData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<section`)
		h.attr("id", ContentID)
		h.raw(`>`)
		h.render(FilterBar(d.Controls))
		if d.Loading {
			h.render(Skeleton(d.SkeletonColumns))
		} else {
			h.render(Grid(d.Grid))
		}
		h.raw(`</section>`)
		return h.err
	})
}

// Page renders the full dashboard document.
func Page(title string, d ContentData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		// Swap error fragments so alerts reach the modal slot.
		h.raw(`<meta name="htmx-config"`)
		h.attr("content", htmxConfig)
		h.raw(`>`)
		h.raw(`<script`)
		h.attr("src", HTMXSource)
		h.raw(`></script>`)
		h.raw(`<style>`, stylesheet, `</style>`)
		h.raw(`</head><body><main><h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.render(Content(d))
		h.raw(`<div`)
		h.attr("id", ModalID)
		h.raw(`></div></main></body></html>`)
		return h.err
	})
}

// SecretModal shows one record's token read-only so it can be copied.
func SecretModal(name, secret string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<dialog open class="modal" aria-labelledby="modal-title"><h2 id="modal-title">`)
		h.text(name)
		h.raw(`</h2><textarea readonly rows="6" onclick="this.select()">`)
		h.text(secret)
		h.raw(`</textarea>`)
		h.raw(`<button type="button" onclick="navigator.clipboard.writeText(this.previousElementSibling.value)">Copy</button>`)
		h.raw(`<button type="button" onclick="this.closest('dialog').remove()">Close</button>`)
		h.raw(`</dialog>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="alert" role="alert"><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<small>`)
		h.text(code)
		h.raw(`</small></div>`)
		return h.err
	})
}

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
.filter-bar{display:flex;flex-wrap:wrap;gap:.5rem;align-items:end;margin-bottom:1rem}
.grid{border:1px solid #d9e2ec;border-radius:4px}
.cell{padding:.4rem .6rem;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.header{font-weight:600;background:#f0f4f8}
.row-striped{background:#f8fafc}
.sort{all:unset;cursor:pointer}
.skeleton{height:1.2rem;margin:.3rem;background:#e4e7eb;border-radius:3px}
.modal textarea{width:100%;font-family:monospace}
.alert{border:1px solid #e12d39;background:#ffe3e3;padding:.5rem 1rem}
`
