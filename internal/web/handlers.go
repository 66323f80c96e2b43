package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tokengrid/internal/grid"
	"github.com/JonMunkholm/tokengrid/internal/logging"
	"github.com/JonMunkholm/tokengrid/internal/session"
	"github.com/JonMunkholm/tokengrid/internal/source"
	"github.com/JonMunkholm/tokengrid/internal/web/components"
)

// PageTitle is the dashboard heading.
const PageTitle = "Issued Tokens"

// intentFunc applies one user intent to a session's table.
type intentFunc func(r *http.Request, t *grid.Table)

func sortIntent(r *http.Request, t *grid.Table) {
	t.ChangeSort(r.FormValue("key"))
}

func searchIntent(r *http.Request, t *grid.Table) {
	t.SetSearch(r.FormValue("q"))
}

func searchFieldIntent(r *http.Request, t *grid.Table) {
	t.SetSearchField(r.FormValue("field"))
}

// dateRangeIntent sets both bounds at once. Blank or malformed bounds are
// unbounded; two unbounded ends clear the range.
func dateRangeIntent(r *http.Request, t *grid.Table) {
	key := r.FormValue("key")
	from := grid.ParseBound(r.FormValue("from"))
	to := grid.ParseBound(r.FormValue("to"))
	if from == nil && to == nil {
		t.ClearDateRange(key)
		return
	}
	t.SetDateRange(key, from, to)
}

func toggleIntent(r *http.Request, t *grid.Table) {
	t.ToggleColumn(r.FormValue("label"))
}

// intent wraps an intentFunc into a handler that answers HTMX with the
// refreshed grid and plain form posts with a redirect to the page.
func (s *Server) intent(apply intentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}

		var data components.GridData
		err := s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
			apply(r, t)
			data = s.gridData(t)
			return nil
		})
		if err != nil {
			s.respondSessionError(w, r, err)
			return
		}

		logging.WithFields(r.Context(), "session", sessionID(r.Context())).Debug("intent applied",
			"path", r.URL.Path,
			"shown", len(data.Rows),
		)

		if !isHTMX(r) {
			http.Redirect(w, r, components.PathPage, http.StatusSeeOther)
			return
		}
		s.render(w, r, components.Grid(data))
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data, err := s.contentData(r)
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	s.render(w, r, components.Page(PageTitle, data))
}

// handleGrid serves the grid alone; the loading skeleton polls it.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if !s.Loaded() {
		s.render(w, r, components.Skeleton(len(s.layout.Columns)))
		return
	}

	var data components.GridData
	err := s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
		data = s.gridData(t)
		return nil
	})
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	s.render(w, r, components.Grid(data))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
		t.Reset()
		return nil
	})
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	s.renderContent(w, r)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context()); err != nil {
		s.respondError(w, r, err, refreshStatus(err))
		return
	}
	s.renderContent(w, r)
}

// refreshStatus is 503 when fetch slots are exhausted, 502 otherwise.
func refreshStatus(err error) int {
	if errors.Is(err, source.ErrBusy) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// handleSecret renders the read-only token modal for one row. The link
// carries the record generation it was rendered from; a reload since then
// may have moved a different record to the same index.
func (s *Server) handleSecret(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, r, errRowNotFound, http.StatusNotFound)
		return
	}
	gen, err := strconv.ParseUint(r.URL.Query().Get("gen"), 10, 64)
	if err != nil {
		s.respondError(w, r, errRowStale, http.StatusConflict)
		return
	}

	var title, secret string
	err = s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
		if t.Generation() != gen {
			return errRowStale
		}
		rec, ok := t.Record(index)
		if !ok {
			return errRowNotFound
		}
		v := rec.Get(s.cfg.Grid.SecretField)
		if v.IsAbsent() {
			return errRowNotFound
		}
		secret = v.String()
		title = rec.Get(s.layout.Filters.DefaultSearchField).String()
		return nil
	})
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	if title == "" {
		title = "Token"
	}

	logging.WithFields(r.Context(), "session", sessionID(r.Context())).Info("token viewed", "row", index)
	s.render(w, r, components.SecretModal(title, secret))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"loaded":   s.Loaded(),
		"sessions": s.sessions.Len(),
	})
}

// respondSessionError maps the errors a session callback can return.
func (s *Server) respondSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.respondError(w, r, err, http.StatusGone)
	case errors.Is(err, errRowNotFound):
		s.respondError(w, r, err, http.StatusNotFound)
	case errors.Is(err, errRowStale):
		s.respondError(w, r, err, http.StatusConflict)
	default:
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

func (s *Server) renderContent(w http.ResponseWriter, r *http.Request) {
	data, err := s.contentData(r)
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, components.PathPage, http.StatusSeeOther)
		return
	}
	s.render(w, r, components.Content(data))
}

func (s *Server) contentData(r *http.Request) (components.ContentData, error) {
	data := components.ContentData{
		Loading:         !s.Loaded(),
		SkeletonColumns: len(s.layout.Columns),
	}
	err := s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
		data.Controls = t.Controls()
		data.Grid = s.gridData(t)
		return nil
	})
	return data, err
}

// gridData projects the table and renders every visible cell.
func (s *Server) gridData(t *grid.Table) components.GridData {
	v := t.View()
	cells := grid.RenderRows[components.CellData](v, s.renderCell)

	rows := make([]components.RowData, len(v.Rows))
	for i, row := range v.Rows {
		rows[i] = components.RowData{Index: row.Index, Cells: cells[i]}
	}

	return components.GridData{
		Headers:    t.Headers(),
		Template:   v.Geometry.Template(),
		Rows:       rows,
		Total:      v.Total,
		Generation: v.Generation,
	}
}

// renderCell renders dates as UTC timestamps and the unlabeled NONE column
// as the row's view-token action.
func (s *Server) renderCell(key string, row grid.Row) components.CellData {
	col, _ := s.layout.Columns.Lookup(key)
	if col.Type == grid.ColumnNone && key == "" {
		return components.CellData{
			Key:    key,
			Action: !row.Record.Get(s.cfg.Grid.SecretField).IsAbsent(),
		}
	}
	return components.CellData{Key: key, Text: col.Display(row.Record.Get(key))}
}

// render writes an HTML component. Render errors after the header is sent
// can only be logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
