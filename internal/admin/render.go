package admin

import (
	"fmt"
	"io"
	"text/tabwriter"
)

var columnTitles = map[SortKey]string{
	SortNIK:     "NIK",
	SortName:    "Nama",
	SortDOB:     "Tanggal Lahir",
	SortAddress: "Alamat",
}

// Render writes the view as a text table.
func Render(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, k := range SortKeys {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintf(tw, "%s %s", columnTitles[k], v.Arrow(k))
	}
	fmt.Fprintln(tw)

	if len(v.Rows) == 0 {
		fmt.Fprintln(tw, v.Empty)
	}
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.NIK, r.Name, r.DOB, r.Address)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not render table: %w", err)
	}

	prev, next := "<", ">"
	if v.PrevDisabled {
		prev = " "
	}
	if v.NextDisabled {
		next = " "
	}
	_, err := fmt.Fprintf(w, "\n%s  %s %s %s\n", v.PageInfo, prev, v.PageLabel, next)
	if err != nil {
		return err
	}
	if v.Alert != "" {
		_, err = fmt.Fprintf(w, "! %s\n", v.Alert)
	}
	return err
}
