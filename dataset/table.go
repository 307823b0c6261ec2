// Package dataset loads delimited feature and label tables and partitions
// feature columns into categorical and numeric sets by inspecting the
// materialized value type of each column.
package dataset

import (
	"math"
	"strconv"

	"github.com/aquamodel/watertable/pkg/errors"
)

// ColumnKind is the inferred semantic type of a column.
type ColumnKind int

const (
	// KindCategorical marks a column with at least one non-empty cell that
	// does not parse as a number.
	KindCategorical ColumnKind = iota
	// KindNumeric marks a column whose every non-empty cell parses as a
	// number.
	KindNumeric
	// KindMissing marks a column with no non-empty cells. Such columns
	// belong to neither partition.
	KindMissing
)

// Table is an in-memory feature table: named columns over row-aligned
// string cells. Types are inferred from cell values, not declared by a
// schema.
type Table struct {
	names []string
	index map[string]int
	cols  [][]string
	rows  int
}

// FromRecords builds a Table from a header and row-major records. Every
// record must have exactly len(header) cells.
func FromRecords(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.NewValueError("dataset.FromRecords", "empty header")
	}
	t := &Table{
		names: append([]string(nil), header...),
		index: make(map[string]int, len(header)),
		cols:  make([][]string, len(header)),
		rows:  len(records),
	}
	for j, name := range t.names {
		if _, dup := t.index[name]; dup {
			return nil, errors.NewValueError("dataset.FromRecords", "duplicate column name "+strconv.Quote(name))
		}
		t.index[name] = j
		t.cols[j] = make([]string, len(records))
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, errors.NewDimensionError("dataset.FromRecords", len(header), len(rec), 1)
		}
		for j, cell := range rec {
			t.cols[j][i] = cell
		}
	}
	return t, nil
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int {
	return t.rows
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Strings returns the raw cells of a column.
func (t *Table) Strings(name string) ([]string, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewSchemaError("Table.Strings", name, "no such column")
	}
	return append([]string(nil), t.cols[j]...), nil
}

// Floats returns the column parsed as float64. Empty or unparseable cells
// become NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, errors.NewSchemaError("Table.Floats", name, "no such column")
	}
	out := make([]float64, t.rows)
	for i, cell := range t.cols[j] {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// Kind infers the semantic type of a column from its cells.
func (t *Table) Kind(name string) (ColumnKind, error) {
	j, ok := t.index[name]
	if !ok {
		return KindMissing, errors.NewSchemaError("Table.Kind", name, "no such column")
	}
	seen := false
	for _, cell := range t.cols[j] {
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return KindCategorical, nil
		}
	}
	if !seen {
		return KindMissing, nil
	}
	return KindNumeric, nil
}

// Drop returns a new Table without the named columns. Unknown names are
// ignored.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	out := &Table{
		index: make(map[string]int),
		rows:  t.rows,
	}
	for j, name := range t.names {
		if dropped[name] {
			continue
		}
		out.index[name] = len(out.names)
		out.names = append(out.names, name)
		out.cols = append(out.cols, t.cols[j])
	}
	return out
}

// ColumnPartition holds the ordered categorical and numeric column name
// lists derived from a training table. The partition must be computed once
// from the training table and reused for inference tables; recomputing it
// from an inference table with different inferred types breaks the
// downstream categorical index mapping.
type ColumnPartition struct {
	Categorical []string
	Numeric     []string
}

// Partition classifies every column as categorical or numeric by its value
// type, preserving table column order. Columns with no non-empty cells are
// omitted from both lists.
func (t *Table) Partition() ColumnPartition {
	var p ColumnPartition
	for _, name := range t.names {
		kind, _ := t.Kind(name)
		switch kind {
		case KindCategorical:
			p.Categorical = append(p.Categorical, name)
		case KindNumeric:
			p.Numeric = append(p.Numeric, name)
		}
	}
	return p
}
