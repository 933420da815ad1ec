package table

import "fmt"

// Drop returns a new Table without the columns at the given positions.
// Positions are zero-based; negative positions count from the end, so -1 is
// the last column. A position outside [-ncol, ncol) yields an *IndexError.
// Repeated positions are dropped once. t is never modified.
func Drop(t *Table, positions []int) (*Table, error) {
	if len(positions) == 0 {
		return t, nil
	}
	ncol := len(t.cols)
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		idx := p
		if idx < 0 {
			idx += ncol
		}
		if idx < 0 || idx >= ncol {
			return nil, &IndexError{Position: p, NumCols: ncol}
		}
		drop[idx] = true
	}

	keep := make([]int, 0, ncol-len(drop))
	for j := 0; j < ncol; j++ {
		if !drop[j] {
			keep = append(keep, j)
		}
	}
	cols := make([]Column, len(keep))
	for k, j := range keep {
		cols[k] = t.cols[j]
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		rows[i] = row
	}
	return &Table{cols: cols, rows: rows}, nil
}

// Concat stacks the rows of tables in order. All tables must carry the same
// set of headers; columns are lined up by header, in the order of the first
// table. Column kinds are inferred again over the combined rows so a column is
// numeric only if it is numeric everywhere.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("concat: no tables")
	}
	want := tables[0].Headers()
	perms := make([][]int, len(tables))
	total := 0
	for i, t := range tables {
		got := t.Headers()
		perm, ok := alignColumns(want, got)
		if !ok {
			return nil, &SchemaError{Index: i, Want: want, Got: got}
		}
		perms[i] = perm
		total += len(t.rows)
	}
	rows := make([][]string, 0, total)
	for i, t := range tables {
		if perms[i] == nil {
			// Rows are never mutated after construction, so they can be shared.
			rows = append(rows, t.rows...)
			continue
		}
		for _, r := range t.rows {
			row := make([]string, len(want))
			for k, j := range perms[i] {
				row[k] = r[j]
			}
			rows = append(rows, row)
		}
	}
	return newTable(want, rows), nil
}

// alignColumns maps each position of want to a column of got with the same
// header. Repeated headers pair up in order. The returned permutation is nil
// when got is already in want's order; ok is false when the header multisets
// differ.
func alignColumns(want, got []string) (perm []int, ok bool) {
	if len(want) != len(got) {
		return nil, false
	}
	positions := make(map[string][]int, len(got))
	for j, h := range got {
		positions[h] = append(positions[h], j)
	}
	perm = make([]int, len(want))
	identity := true
	for k, h := range want {
		idx := positions[h]
		if len(idx) == 0 {
			return nil, false
		}
		perm[k] = idx[0]
		positions[h] = idx[1:]
		if idx[0] != k {
			identity = false
		}
	}
	if identity {
		return nil, true
	}
	return perm, true
}
