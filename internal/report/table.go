// Package report turns a discovery result into a table with one row per
// corpus string and one column per pattern, and exports it as a spreadsheet
// or CSV file.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
)

// Cell holds the start positions of one pattern in one corpus string.
// Present is false when the pattern was not recorded for that string.
type Cell struct {
	Positions []int
	Present   bool
}

// String renders the positions as "[0, 4]". A missing cell renders empty.
func (c Cell) String() string {
	if !c.Present {
		return ""
	}
	parts := make([]string, len(c.Positions))
	for i, p := range c.Positions {
		parts[i] = strconv.Itoa(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Row is one corpus string. Number starts at 1; Index is the 0-based corpus
// index it was built from.
type Row struct {
	Number int
	Index  int
	Cells  []Cell
}

type Table struct {
	Columns []string
	Rows    []Row
}

// Build lays out result as a table. Columns are ordered by pattern length,
// ties keeping discovery order. Every corpus string gets a row, including
// strings where nothing was found.
func Build(result *motif.Result) Table {
	columns := append([]string(nil), result.Order...)
	sort.SliceStable(columns, func(i, j int) bool {
		return len(columns[i]) < len(columns[j])
	})

	rows := make([]Row, result.CorpusSize)
	for idx := range rows {
		cells := make([]Cell, len(columns))
		for c, pattern := range columns {
			if positions, ok := result.Patterns[pattern][idx]; ok {
				cells[c] = Cell{Positions: positions, Present: true}
			}
		}
		rows[idx] = Row{Number: idx + 1, Index: idx, Cells: cells}
	}
	return Table{Columns: columns, Rows: rows}
}
