package components

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// Endpoints the components post intents to.
const (
	PathPage        = "/tokens"
	PathGrid        = "/tokens/grid"
	PathSort        = "/tokens/sort"
	PathSearch      = "/tokens/search"
	PathSearchField = "/tokens/search-field"
	PathDateRange   = "/tokens/date-range"
	PathToggle      = "/tokens/columns/toggle"
	PathReset       = "/tokens/reset"
	PathRefresh     = "/tokens/refresh"
)

// SecretPath returns the modal URL for the row at input position index of
// record generation gen.
func SecretPath(gen uint64, index int) string {
	return fmt.Sprintf("/tokens/rows/%d/secret?gen=%d", index, gen)
}

// GridID and ContentID are the HTMX swap targets.
const (
	GridID    = "grid"
	ContentID = "token-grid"
	ModalID   = "modal"
)

// CellData is one rendered cell.
type CellData struct {
	Key  string
	Text string
	// Action renders the row's view-token button instead of text.
	Action bool
}

// RowData is one rendered row. Index is the record's input position.
type RowData struct {
	Index int
	Cells []CellData
}

// GridData is everything the grid component renders.
type GridData struct {
	Headers  []grid.Header
	Template string
	Rows     []RowData
	Total    int
	// Generation is the record set the row indexes refer to.
	Generation uint64
}

// Grid renders the header row and the visible rows. Rows are striped by
// display position.
func Grid(d GridData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)

		h.raw(`<div`)
		h.attr("id", GridID)
		h.attr("class", "grid")
		h.attr("role", "table")
		h.attr("style", "display:grid;grid-template-columns:"+d.Template)
		h.raw(`>`)

		for _, hd := range d.Headers {
			h.render(Header(hd))
		}

		for i, row := range d.Rows {
			class := "row"
			if i%2 == 1 {
				class = "row row-striped"
			}
			for _, cell := range row.Cells {
				h.raw(`<div`)
				h.attr("class", "cell "+class)
				h.attr("role", "cell")
				h.raw(`>`)
				h.render(Cell(d.Generation, row.Index, cell))
				h.raw(`</div>`)
			}
		}

		h.raw(`</div>`)
		h.raw(`<p class="grid-count">`)
		h.text(fmt.Sprintf("Showing %d of %d tokens", len(d.Rows), d.Total))
		h.raw(`</p>`)
		return h.err
	})
}

// Header renders one column header. Sortable headers post a sort intent.
func Header(hd grid.Header) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)

		h.raw(`<div class="cell header" role="columnheader"`)
		h.attr("aria-sort", ariaSort(hd.Order))
		h.raw(`>`)

		if !hd.Sortable {
			h.text(hd.Label)
			h.raw(`</div>`)
			return h.err
		}

		h.raw(`<button type="button" class="sort"`)
		h.attr("hx-post", PathSort)
		h.vals(map[string]string{"key": hd.Key})
		h.attr("hx-target", "#"+GridID)
		h.attr("hx-swap", "outerHTML")
		h.raw(`>`)
		h.text(hd.Label)
		h.raw(`<span class="sort-indicator">`, sortIndicator(hd.Order), `</span>`)
		h.raw(`</button></div>`)
		return h.err
	})
}

// Cell renders one cell body.
func Cell(gen uint64, index int, c CellData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		if !c.Action {
			h.text(c.Text)
			return h.err
		}
		h.raw(`<button type="button" class="view-token"`)
		h.attr("hx-get", SecretPath(gen, index))
		h.attr("hx-target", "#"+ModalID)
		h.attr("aria-label", "View token for row "+strconv.Itoa(index))
		h.raw(`>View</button>`)
		return h.err
	})
}

// Skeleton renders placeholder cells while records load, four rows of the
// given column count. It polls PathGrid until the real grid is ready.
func Skeleton(columns int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div`)
		h.attr("id", GridID)
		h.attr("class", "grid loading")
		h.attr("aria-busy", "true")
		h.attr("style", "display:grid;grid-template-columns:"+grid.GeometryFor(columns).Template())
		h.attr("hx-get", PathGrid)
		h.attr("hx-trigger", "load delay:1s")
		h.attr("hx-swap", "outerHTML")
		h.raw(`>`)
		for i := 0; i < columns*4; i++ {
			h.raw(`<div class="cell skeleton"></div>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func sortIndicator(o grid.Order) string {
	switch o {
	case grid.OrderAsc:
		return "&#9650;"
	case grid.OrderDesc:
		return "&#9660;"
	default:
		return ""
	}
}

func ariaSort(o grid.Order) string {
	switch o {
	case grid.OrderAsc:
		return "ascending"
	case grid.OrderDesc:
		return "descending"
	default:
		return "none"
	}
}
