// Package grid is the tabular data engine behind the token tables.
//
// It has no UI or I/O dependencies. A [Table] is mounted with a [Config]
// and a slice of [Record] values and derives a [View] in three stages:
//
//  1. Sort: [SortedView] orders rows by the single active column using a
//     comparator chosen by the column's [ColumnType]. Ties keep input order.
//  2. Filter: [Apply] keeps rows matching the scoped search text and every
//     date range. Filtering never reorders.
//  3. Project: [ActiveKeys] narrows the columns to the visible labels, in
//     column map order.
//
// Every state change is a method on Table (ChangeSort, SetSearch,
// SetSearchField, SetDateRange, ToggleColumn, Reset); View recomputes the
// projection from scratch on each call.
//
// # Value semantics
//
//   - Text columns compare raw strings byte-wise (case-sensitive).
//   - Number columns parse text values; absent or non-numeric values rank
//     lowest.
//   - Date columns store epoch seconds and compare as epoch milliseconds,
//     the scale date-range bounds are checked on.
//   - Date ranges are exclusive on both ends. A row missing a field under a
//     bounded range is dropped.
//
// Unknown keys are treated as [ColumnNone]; intents that reference them are
// ignored rather than reported.
package grid
