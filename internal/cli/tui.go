package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tokengrid/internal/grid"
	"github.com/JonMunkholm/tokengrid/internal/source"
)

func newTUICmd(src *sourceOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the token grid interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			layout, records, closer, err := src.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			m, err := newGridModel(ctx, layout, records, src.secretField)
			if err != nil {
				return err
			}

			loggerFromContext(ctx).Debug("starting tui", "source", src.describe())
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// recordsMsg carries the result of a record fetch.
type recordsMsg struct {
	records []grid.Record
	err     error
}

// gridModel is the bubbletea model for the interactive grid. Every key
// press maps to one grid intent; the view is re-projected on each render.
type gridModel struct {
	ctx         context.Context
	source      source.Source
	secretField string
	table       *grid.Table

	loading   bool
	err       error
	focus     int // header index
	cursor    int // display row
	offset    int // first display row on screen
	height    int // visible data rows
	searching bool
	secret    string // token shown in the modal; "" when closed
}

func newGridModel(ctx context.Context, layout grid.Config, src source.Source, secretField string) (gridModel, error) {
	t, err := grid.NewTable(layout, nil)
	if err != nil {
		return gridModel{}, err
	}
	return gridModel{
		ctx:         ctx,
		source:      src,
		secretField: secretField,
		table:       t,
		loading:     true,
		height:      15,
	}, nil
}

func (m gridModel) load() tea.Cmd {
	return func() tea.Msg {
		records, err := m.source.Records(m.ctx)
		return recordsMsg{records: records, err: err}
	}
}

func (m gridModel) Init() tea.Cmd {
	return m.load()
}

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.table.SetRecords(msg.records)
		}
		m.clamp()
		return m, nil

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 3)
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		if m.secret != "" {
			switch msg.String() {
			case "esc", "enter", "q", "v":
				m.secret = ""
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		if m.searching {
			return m.updateSearch(msg), nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m gridModel) updateSearch(msg tea.KeyMsg) gridModel {
	text := m.table.Filter().SearchText
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.searching = false
		return m
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			text = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		text += " "
	case tea.KeyRunes:
		text += string(msg.Runes)
	default:
		return m
	}
	m.table.SetSearch(text)
	m.cursor, m.offset = 0, 0
	return m
}

func (m gridModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	headers := m.table.Headers()

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		if m.focus > 0 {
			m.focus--
		}
	case "right", "l":
		if m.focus < len(headers)-1 {
			m.focus++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor++
	case "s", "enter":
		if m.focus < len(headers) {
			m.table.ChangeSort(headers[m.focus].Key)
		}
	case "/":
		m.searching = true
	case "tab":
		m.cycleSearchField()
	case "v":
		m.secret = m.cursorSecret()
	case "r":
		m.table.Reset()
		m.cursor, m.offset = 0, 0
	case "R":
		m.loading = true
		return m, m.load()
	default:
		// 1-9 toggle the nth column in the toggler.
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			toggles := m.table.Controls().Toggles
			if i := int(key[0] - '1'); i < len(toggles) {
				m.table.ToggleColumn(toggles[i].Label)
			}
		}
	}
	m.clamp()
	return m, nil
}

// cycleSearchField moves the search scope to the next search-by field.
func (m *gridModel) cycleSearchField() {
	items := m.table.Controls().SearchBy
	if len(items) == 0 {
		return
	}
	current := m.table.Filter().SearchField
	next := items[0].Key
	for i, item := range items {
		if item.Key == current {
			next = items[(i+1)%len(items)].Key
			break
		}
	}
	m.table.SetSearchField(next)
}

func (m gridModel) cursorSecret() string {
	v := m.table.View()
	if m.cursor >= len(v.Rows) {
		return ""
	}
	return v.Rows[m.cursor].Record.Get(m.secretField).String()
}

// clamp keeps focus and cursor inside the current projection.
func (m *gridModel) clamp() {
	if n := len(m.table.Headers()); m.focus >= n {
		m.focus = max(n-1, 0)
	}
	rows := len(m.table.View().Rows)
	if m.cursor >= rows {
		m.cursor = max(rows-1, 0)
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m gridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Issued Tokens"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(renderSkeleton(m.table.Config().Columns))
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("Loading tokens..."))
		return b.String()
	}

	if m.secret != "" {
		b.WriteString(styleModal.Render(m.secret))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("esc close"))
		return b.String()
	}

	v := m.table.View()
	end := min(m.offset+m.height, len(v.Rows))
	page := v
	page.Rows = v.Rows[m.offset:end]
	rows := grid.RenderRows(page, cellRenderer(m.table.Config().Columns, m.secretField))

	b.WriteString(renderTable(m.table.Headers(), rows, m.focus, m.cursor-m.offset))
	b.WriteString("\n")

	f := m.table.Filter()
	search := fmt.Sprintf("search [%s]: %s", m.table.Config().Columns.Label(f.SearchField), f.SearchText)
	if m.searching {
		search += "_"
	}
	b.WriteString(search)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(summary(m.table, len(v.Rows))))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(StyleError.Render("load failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render("←/→ column  ↑/↓ row  s sort  / search  tab field  1-9 columns  v token  r reset  R reload  q quit"))
	return b.String()
}
