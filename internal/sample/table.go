// Package sample holds recorded collective-variable samples and their
// CSV representation.
package sample

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Table is an append-only record of sampling events. Each row carries,
// for every collective variable, the instantaneous CV value and the
// paired extended-variable position. Columns are named <id> and s_<id>.
type Table struct {
	ids  []string
	rows [][]float64
}

// New creates an empty table for the given CV ids.
func New(ids ...string) *Table {
	t := &Table{ids: make([]string, len(ids))}
	copy(t.ids, ids)
	return t
}

// Dim returns the number of collective variables per row.
func (t *Table) Dim() int { return len(t.ids) }

// Len returns the number of recorded rows.
func (t *Table) Len() int { return len(t.rows) }

// IDs returns the CV ids in column order.
func (t *Table) IDs() []string { return t.ids }

// Append records one sampling event. values and extended must each
// hold one entry per CV.
func (t *Table) Append(values, extended []float64) error {
	if len(values) != len(t.ids) || len(extended) != len(t.ids) {
		return fmt.Errorf("sample: row width %d/%d, table has %d variables",
			len(values), len(extended), len(t.ids))
	}
	row := make([]float64, 0, 2*len(t.ids))
	for i := range t.ids {
		row = append(row, values[i], extended[i])
	}
	t.rows = append(t.rows, row)
	return nil
}

// Value returns the CV-value column for variable d.
func (t *Table) Value(d int) []float64 {
	col := make([]float64, len(t.rows))
	for i, row := range t.rows {
		col[i] = row[2*d]
	}
	return col
}

// Extended returns the extended-variable column for variable d.
func (t *Table) Extended(d int) []float64 {
	col := make([]float64, len(t.rows))
	for i, row := range t.rows {
		col[i] = row[2*d+1]
	}
	return col
}

// At returns the CV value and extended position of variable d in row i.
func (t *Table) At(i, d int) (value, extended float64) {
	return t.rows[i][2*d], t.rows[i][2*d+1]
}

// Merge appends all rows of other. The variable sets must match.
func (t *Table) Merge(other *Table) error {
	if other.Dim() != t.Dim() {
		return fmt.Errorf("sample: merging table with %d variables into %d", other.Dim(), t.Dim())
	}
	for i, id := range t.ids {
		if other.ids[i] != id {
			return fmt.Errorf("sample: variable %q does not match %q", other.ids[i], id)
		}
	}
	t.rows = append(t.rows, other.rows...)
	return nil
}

// Save writes the table as CSV with a header row.
func (t *Table) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := make([]string, 0, 2*len(t.ids))
	for _, id := range t.ids {
		header = append(header, id, "s_"+id)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	buf := make([]string, 2*len(t.ids))
	for _, row := range t.rows {
		for j, v := range row {
			buf[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a CSV written by Save. Column order and naming must follow
// the <id>, s_<id> convention.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sample: %s has no header row", path)
	}

	header := records[0]
	if len(header)%2 != 0 {
		return nil, fmt.Errorf("sample: %s has %d columns, want value/extended pairs", path, len(header))
	}
	ids := make([]string, 0, len(header)/2)
	for i := 0; i < len(header); i += 2 {
		id := header[i]
		if header[i+1] != "s_"+id {
			return nil, fmt.Errorf("sample: column %q not paired with %q", id, "s_"+id)
		}
		ids = append(ids, id)
	}

	t := New(ids...)
	for n, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("sample: row %d has %d fields, want %d", n+1, len(record), len(header))
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("sample: row %d field %d: %w", n+1, j, err)
			}
			row[j] = v
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}
