package ui

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/pkgpurge/internal/core"
)

// RenderPackages prints the 1-indexed results listing
func RenderPackages(w io.Writer, pkgs core.FoundPackages) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"#", "Source", "Identifier", "Name"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for i, pkg := range pkgs {
		name := pkg.Name
		if name == "" {
			name = "-"
		}
		if err := table.Append(strconv.Itoa(i+1), ColorizeSource(pkg.Source), pkg.ID, name); err != nil {
			return err
		}
	}

	return table.Render()
}

// Row is one line of a generic status table
type Row []string

// RenderRows prints a table with the given header
func RenderRows(w io.Writer, header []string, rows []Row) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}
