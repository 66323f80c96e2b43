package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// viewOptions holds the intents applied before printing.
type viewOptions struct {
	sort   string
	search string
	by     string
	from   string
	to     string
	date   string
	hide   []string
}

func newViewCmd(src *sourceOptions) *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the token grid",
		Long: `Print one projection of the token grid.

Sort takes a column key with an optional order, e.g. --sort iat:desc.
Date bounds accept epoch seconds, RFC 3339 or YYYY-MM-DD[ HH:MM]; both
bounds are exclusive.`,
		Example: `  gridctl view --sort name
  gridctl view --search ci --by sub --hide Issuer\ ID
  gridctl view --from 2024-01-01 --to 2024-02-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			layout, records, closer, err := src.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			prog := newProgress(logger)
			rows, err := records.Records(ctx)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d records from %s", len(rows), src.describe()))

			table, err := grid.NewTable(layout, rows)
			if err != nil {
				return err
			}
			if err := opts.apply(table); err != nil {
				return err
			}

			return printTable(cmd.OutOrStdout(), table, src.secretField)
		},
	}

	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "sort by column key[:asc|desc]")
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "case-insensitive search text")
	cmd.Flags().StringVar(&opts.by, "by", "", "field to search (default: layout default)")
	cmd.Flags().StringVar(&opts.date, "date-field", "", "date column for --from/--to (default: first date-range column)")
	cmd.Flags().StringVar(&opts.from, "from", "", "exclusive lower date bound")
	cmd.Flags().StringVar(&opts.to, "to", "", "exclusive upper date bound")
	cmd.Flags().StringSliceVar(&opts.hide, "hide", nil, "column labels to hide")

	return cmd
}

// apply replays the flags as grid intents.
func (o *viewOptions) apply(t *grid.Table) error {
	if o.sort != "" {
		if err := applySort(t, o.sort); err != nil {
			return err
		}
	}
	if o.by != "" {
		t.SetSearchField(o.by)
	}
	t.SetSearch(o.search)

	if o.from != "" || o.to != "" {
		key := o.date
		if key == "" {
			ranges := t.Config().Filters.DateRange
			if len(ranges) == 0 {
				return fmt.Errorf("--from/--to need --date-field: layout has no date-range columns")
			}
			key = ranges[0]
		}
		from, to := grid.ParseBound(o.from), grid.ParseBound(o.to)
		if o.from != "" && from == nil {
			return fmt.Errorf("invalid --from %q", o.from)
		}
		if o.to != "" && to == nil {
			return fmt.Errorf("invalid --to %q", o.to)
		}
		t.SetDateRange(key, from, to)
	}

	for _, label := range o.hide {
		if !t.Visible().Has(label) {
			continue
		}
		t.ToggleColumn(label)
	}
	return nil
}

// applySort clicks the header until the requested order is reached.
func applySort(t *grid.Table, spec string) error {
	key, order, _ := strings.Cut(spec, ":")
	if !t.IsSortable(key) {
		return fmt.Errorf("column %q is not sortable", key)
	}

	want := grid.OrderAsc
	switch strings.ToLower(order) {
	case "", "asc":
	case "desc":
		want = grid.OrderDesc
	default:
		return fmt.Errorf("invalid sort order %q (want asc or desc)", order)
	}

	for i := 0; i < 3 && t.Sort().OrderOf(key) != want; i++ {
		t.ChangeSort(key)
	}
	return nil
}

func printTable(w io.Writer, t *grid.Table, secretField string) error {
	v := t.View()
	rows := grid.RenderRows(v, cellRenderer(t.Config().Columns, secretField))

	if _, err := fmt.Fprintln(w, renderTable(t.Headers(), rows, -1, -1)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, StyleDim.Render(summary(t, len(v.Rows))))
	return err
}
