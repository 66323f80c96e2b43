package components

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// InputLayout is the value layout of datetime-local inputs.
const InputLayout = "2006-01-02T15:04"

// FilterBar renders the search box, search-by dropdown, date-range inputs
// and column toggler. Every control targets the grid only, so typing does
// not lose focus.
func FilterBar(c grid.Controls) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="filter-bar">`)

		h.raw(`<input type="search" name="q" placeholder="Search"`)
		h.attr("value", c.SearchText)
		h.attr("hx-post", PathSearch)
		h.attr("hx-trigger", "input changed delay:300ms, search")
		h.attr("hx-target", "#"+GridID)
		h.attr("hx-swap", "outerHTML")
		h.raw(`>`)

		if len(c.SearchBy) > 0 {
			h.raw(`<select name="field" aria-label="Search by"`)
			h.attr("hx-post", PathSearchField)
			h.attr("hx-target", "#"+GridID)
			h.attr("hx-swap", "outerHTML")
			h.raw(`>`)
			for _, item := range c.SearchBy {
				h.raw(`<option`)
				h.attr("value", item.Key)
				if item.Key == c.SearchField {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(item.Label)
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
		}

		for _, item := range c.DateRanges {
			h.render(dateRange(item))
		}

		if c.ColumnToggler && len(c.Toggles) > 0 {
			h.raw(`<details class="column-toggler"><summary>Columns</summary>`)
			for _, t := range c.Toggles {
				h.raw(`<label><input type="checkbox"`)
				if t.Checked {
					h.raw(` checked`)
				}
				h.attr("hx-post", PathToggle)
				h.vals(map[string]string{"label": t.Label})
				h.attr("hx-target", "#"+GridID)
				h.attr("hx-swap", "outerHTML")
				h.raw(`> `)
				h.text(t.Label)
				h.raw(`</label>`)
			}
			h.raw(`</details>`)
		}

		h.raw(`<button type="button"`)
		h.attr("hx-post", PathReset)
		h.attr("hx-target", "#"+ContentID)
		h.attr("hx-swap", "outerHTML")
		h.raw(`>Reset</button>`)

		h.raw(`<button type="button"`)
		h.attr("hx-post", PathRefresh)
		h.attr("hx-target", "#"+ContentID)
		h.attr("hx-swap", "outerHTML")
		h.raw(`>Refresh</button>`)

		h.raw(`</div>`)
		return h.err
	})
}

func dateRange(item grid.DateRangeItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<fieldset class="date-range"><legend>`)
		h.text(item.Label)
		h.raw(`</legend>`)
		h.raw(`<input type="hidden" name="key"`)
		h.attr("value", item.Key)
		h.raw(`>`)
		for _, bound := range []struct {
			name  string
			value *time.Time
		}{
			{"from", item.Range.From},
			{"to", item.Range.To},
		} {
			h.raw(`<input type="datetime-local"`)
			h.attr("name", bound.name)
			h.attr("aria-label", item.Label+" "+bound.name)
			if bound.value != nil {
				h.attr("value", bound.value.UTC().Format(InputLayout))
			}
			h.attr("hx-post", PathDateRange)
			h.attr("hx-include", "closest fieldset")
			h.attr("hx-target", "#"+GridID)
			h.attr("hx-swap", "outerHTML")
			h.raw(`>`)
		}
		h.raw(`</fieldset>`)
		return h.err
	})
}
