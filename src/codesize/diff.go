// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package codesize

import (
	"fmt"
	"io"
	"strconv"
)

// DiffRow compares the total size of one module in two reports.
type DiffRow struct {
	Module  string
	Old     int
	New     int
	Delta   int
	Percent float64
}

func percent(oldSize, delta int) float64 {
	switch {
	case oldSize != 0:
		return float64(delta) * 100.0 / float64(oldSize)
	case delta > 0:
		return 100.0
	case delta < 0:
		return -100.0
	}
	return 0
}

// Diff lists the modules whose size changed between a and b, then the
// modules only in a, then those only in b, and finally a TOTAL row.
func Diff(a, b *Report) []DiffRow {
	var rows []DiffRow
	var totalA, totalB int
	for _, n := range a.Names() {
		sa, _ := a.Get(n)
		oldSize := sa.Total()
		totalA += oldSize
		sb, ok := b.Get(n)
		if !ok {
			rows = append(rows, DiffRow{ModuleName(n), oldSize, 0, -oldSize, -100.0})
			continue
		}
		if d := sb.Total() - oldSize; d != 0 {
			rows = append(rows, DiffRow{ModuleName(n), oldSize, sb.Total(), d, percent(oldSize, d)})
		}
	}
	for _, n := range b.Names() {
		sb, _ := b.Get(n)
		totalB += sb.Total()
		if _, ok := a.Get(n); !ok {
			rows = append(rows, DiffRow{ModuleName(n), 0, sb.Total(), sb.Total(), 100.0})
		}
	}
	d := totalB - totalA
	return append(rows, DiffRow{"TOTAL", totalA, totalB, d, percent(totalA, d)})
}

// ShowDiff prints the rows of Diff.
func ShowDiff(w io.Writer, rows []DiffRow, table bool) error {
	if table {
		t := newTable(w, []string{"Module", "Old", "New", "Delta", "% Delta"})
		for _, r := range rows {
			t.Append([]string{
				r.Module,
				strconv.Itoa(r.Old),
				strconv.Itoa(r.New),
				fmt.Sprintf("%+d", r.Delta),
				fmt.Sprintf("%+.2f%%", r.Percent),
			})
		}
		t.Render()
		return nil
	}
	if _, err := fmt.Fprintf(w, "%-40s %8s %8s %8s %9s\n", "Module", "Old", "New", "Delta", "% Delta"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-40s %8d %8d %+8d %+8.2f%%\n", r.Module, r.Old, r.New, r.Delta, r.Percent); err != nil {
			return err
		}
	}
	return nil
}
