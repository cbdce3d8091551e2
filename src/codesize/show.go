// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package codesize

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

const sizeLine = "%-40s %8v %8v %8v %8v\n"

// Show prints one row per module and a TOTAL row. With table set, the rows
// are laid out by tablewriter instead of fixed-width columns.
func Show(w io.Writer, r *Report, table bool) error {
	rows := [][]string{}
	for _, n := range r.Names() {
		s, _ := r.Get(n)
		rows = append(rows, sizeRow(ModuleName(n), s))
	}
	total := sizeRow("TOTAL", r.Total())
	header := []string{"file", "text", "data", "bss", "total"}

	if table {
		t := newTable(w, header)
		t.AppendBulk(rows)
		t.SetFooter(total)
		t.Render()
		return nil
	}
	if _, err := fmt.Fprintf(w, sizeLine, "file", "text", "data", "bss", "total"); err != nil {
		return err
	}
	for _, row := range append(rows, total) {
		if _, err := fmt.Fprintf(w, sizeLine, row[0], row[1], row[2], row[3], row[4]); err != nil {
			return err
		}
	}
	return nil
}

func sizeRow(name string, s Sizes) []string {
	return []string{
		name,
		strconv.Itoa(s.Text),
		strconv.Itoa(s.Data),
		strconv.Itoa(s.BSS),
		strconv.Itoa(s.Total()),
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	aligns := []int{tablewriter.ALIGN_LEFT}
	for range header[1:] {
		aligns = append(aligns, tablewriter.ALIGN_RIGHT)
	}
	t.SetColumnAlignment(aligns)
	return t
}
