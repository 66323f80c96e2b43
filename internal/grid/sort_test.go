package grid

import (
	"slices"
	"testing"
)

func rowsOf(records ...Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Index: i, Record: rec}
	}
	return rows
}

func indexes(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}

func columnValues(rows []Row, key string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record.Get(key).String()
	}
	return out
}

var testColumns = ColumnMap{
	{Key: "name", Label: "Name", Type: ColumnText},
	{Key: "size", Label: "Size", Type: ColumnNumber},
	{Key: "iat", Label: "Issued", Type: ColumnDate},
	{Key: "", Label: "", Type: ColumnNone},
}

func TestChangeSort_Cycle(t *testing.T) {
	state := SortState{}
	want := []Order{OrderAsc, OrderDesc, OrderNone, OrderAsc}

	for i, w := range want {
		state = ChangeSort(testColumns, state, "iat")
		if state.Key != "iat" || state.Order != w {
			t.Fatalf("click %d: got %+v, want {iat %v}", i+1, state, w)
		}
	}
}

func TestChangeSort_NewKeyResetsToAsc(t *testing.T) {
	tests := []struct {
		name  string
		start SortState
	}{
		{"from asc", SortState{Key: "iat", Order: OrderAsc}},
		{"from desc", SortState{Key: "iat", Order: OrderDesc}},
		{"from none", SortState{Key: "iat", Order: OrderNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeSort(testColumns, tt.start, "name")
			if got != (SortState{Key: "name", Order: OrderAsc}) {
				t.Errorf("got %+v, want {name asc}", got)
			}
		})
	}
}

func TestChangeSort_UnsortableIsNoop(t *testing.T) {
	start := SortState{Key: "name", Order: OrderDesc}

	for _, key := range []string{"", "unknown"} {
		if got := ChangeSort(testColumns, start, key); got != start {
			t.Errorf("ChangeSort(%q) = %+v, want unchanged %+v", key, got, start)
		}
	}
}

func TestSortedView_NoneKeepsInputOrder(t *testing.T) {
	rows := rowsOf(
		Record{"iat": Number(300)},
		Record{"iat": Number(100)},
		Record{"iat": Number(200)},
	)

	for _, state := range []SortState{{}, {Key: "iat", Order: OrderNone}} {
		first := SortedView(testColumns, rows, state)
		second := SortedView(testColumns, first, state)
		if !slices.Equal(indexes(first), []int{0, 1, 2}) || !slices.Equal(indexes(second), []int{0, 1, 2}) {
			t.Errorf("state %+v reordered rows: %v then %v", state, indexes(first), indexes(second))
		}
	}
}

func TestSortedView_DateCycle(t *testing.T) {
	rows := rowsOf(
		Record{"iat": Number(300)},
		Record{"iat": Number(100)},
		Record{"iat": Number(200)},
	)

	want := [][]string{
		{"100", "200", "300"},
		{"300", "200", "100"},
		{"300", "100", "200"},
		{"100", "200", "300"},
	}

	state := SortState{}
	for i, w := range want {
		state = ChangeSort(testColumns, state, "iat")
		got := columnValues(SortedView(testColumns, rows, state), "iat")
		if !slices.Equal(got, w) {
			t.Errorf("click %d (%v): got %v, want %v", i+1, state.Order, got, w)
		}
	}
}

func TestSortedView_TextIsCaseSensitive(t *testing.T) {
	rows := rowsOf(
		Record{"name": Text("beta")},
		Record{"name": Text("Alpha")},
		Record{"name": Text("alpha")},
		Record{"name": Text("Beta")},
	)

	asc := columnValues(SortedView(testColumns, rows, SortState{Key: "name", Order: OrderAsc}), "name")
	wantAsc := []string{"Alpha", "Beta", "alpha", "beta"}
	if !slices.Equal(asc, wantAsc) {
		t.Fatalf("asc = %v, want %v", asc, wantAsc)
	}
	for i := 1; i < len(asc); i++ {
		if asc[i-1] > asc[i] {
			t.Errorf("asc not ordered at %d: %q > %q", i, asc[i-1], asc[i])
		}
	}

	desc := columnValues(SortedView(testColumns, rows, SortState{Key: "name", Order: OrderDesc}), "name")
	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	if !slices.Equal(desc, reversed) {
		t.Errorf("desc = %v, want reverse of asc %v", desc, reversed)
	}
}

func TestSortedView_StableTies(t *testing.T) {
	rows := rowsOf(
		Record{"name": Text("b"), "size": Number(1)},
		Record{"name": Text("a"), "size": Number(2)},
		Record{"name": Text("c"), "size": Number(1)},
		Record{"name": Text("d"), "size": Number(2)},
	)

	asc := SortedView(testColumns, rows, SortState{Key: "size", Order: OrderAsc})
	if got := indexes(asc); !slices.Equal(got, []int{0, 2, 1, 3}) {
		t.Errorf("asc = %v, want [0 2 1 3]", got)
	}

	desc := SortedView(testColumns, rows, SortState{Key: "size", Order: OrderDesc})
	if got := indexes(desc); !slices.Equal(got, []int{1, 3, 0, 2}) {
		t.Errorf("desc = %v, want [1 3 0 2]", got)
	}
}

func TestSortedView_NumberCoercionAndAbsent(t *testing.T) {
	rows := rowsOf(
		Record{"size": Text("10")},
		Record{"size": Text("n/a")},
		Record{"size": Number(9)},
		Record{},
		Record{"size": Text(" 2 ")},
	)

	asc := SortedView(testColumns, rows, SortState{Key: "size", Order: OrderAsc})
	if got := indexes(asc); !slices.Equal(got, []int{1, 3, 4, 2, 0}) {
		t.Errorf("asc = %v, want [1 3 4 2 0]", got)
	}

	desc := SortedView(testColumns, rows, SortState{Key: "size", Order: OrderDesc})
	if got := indexes(desc); !slices.Equal(got, []int{0, 2, 4, 1, 3}) {
		t.Errorf("desc = %v, want [0 2 4 1 3]", got)
	}
}

func TestSortedView_DoesNotMutateInput(t *testing.T) {
	rows := rowsOf(
		Record{"size": Number(3)},
		Record{"size": Number(1)},
	)

	SortedView(testColumns, rows, SortState{Key: "size", Order: OrderAsc})

	if got := indexes(rows); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("input reordered: %v", got)
	}
}

func TestSortedView_Empty(t *testing.T) {
	got := SortedView(testColumns, nil, SortState{Key: "name", Order: OrderAsc})
	if len(got) != 0 {
		t.Errorf("expected empty view, got %d rows", len(got))
	}
}
