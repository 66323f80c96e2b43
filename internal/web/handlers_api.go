package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// apiView is the JSON form of a session's current view.
type apiView struct {
	Columns    []apiColumn `json:"columns"`
	Rows       []apiRow    `json:"rows"`
	Total      int         `json:"total"`
	Generation uint64      `json:"generation"`
	Template   string      `json:"template"`
	Sort       apiSort     `json:"sort"`
	Filter     apiFilter   `json:"filter"`
}

type apiColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type apiRow struct {
	Index  int                   `json:"index"`
	Values map[string]grid.Value `json:"values"`
}

type apiSort struct {
	Key   string `json:"key,omitempty"`
	Order string `json:"order"`
}

type apiRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type apiFilter struct {
	SearchText  string              `json:"search_text"`
	SearchField string              `json:"search_field,omitempty"`
	DateRanges  map[string]apiRange `json:"date_ranges,omitempty"`
}

// handleAPIView returns the session's projected rows. The secret field and
// NONE columns are never included.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	var out apiView
	err := s.sessions.With(sessionID(r.Context()), func(t *grid.Table) error {
		out = s.buildAPIView(t)
		return nil
	})
	if err != nil {
		s.respondSessionError(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context()); err != nil {
		s.respondError(w, r, err, refreshStatus(err))
		return
	}
	writeJSON(w, map[string]int{"count": len(s.snapshot())})
}

func (s *Server) buildAPIView(t *grid.Table) apiView {
	v := t.View()

	var keys []string
	out := apiView{
		Columns:    make([]apiColumn, 0, len(v.Columns)),
		Rows:       make([]apiRow, 0, len(v.Rows)),
		Total:      v.Total,
		Generation: v.Generation,
		Template:   v.Geometry.Template(),
	}
	for _, c := range v.Columns {
		out.Columns = append(out.Columns, apiColumn{Key: c.Key, Label: c.Label, Type: c.Type.String()})
		if c.Type != grid.ColumnNone && c.Key != s.cfg.Grid.SecretField {
			keys = append(keys, c.Key)
		}
	}

	for _, row := range v.Rows {
		values := make(map[string]grid.Value, len(keys))
		for _, key := range keys {
			values[key] = row.Record.Get(key)
		}
		out.Rows = append(out.Rows, apiRow{Index: row.Index, Values: values})
	}

	st := t.Sort()
	out.Sort = apiSort{Key: st.Key, Order: st.Order.String()}

	f := t.Filter()
	out.Filter = apiFilter{SearchText: f.SearchText, SearchField: f.SearchField}
	for key, rg := range f.DateRanges {
		if out.Filter.DateRanges == nil {
			out.Filter.DateRanges = make(map[string]apiRange)
		}
		out.Filter.DateRanges[key] = apiRange{From: rg.From, To: rg.To}
	}
	return out
}
