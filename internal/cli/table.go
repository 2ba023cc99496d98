package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// writeGrid renders rows as a boxed table with a double rule under the
// header. Columns listed in numeric are right-aligned.
func writeGrid(w io.Writer, headers []string, rows [][]string, numeric map[int]bool) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	rule := func(fill string) string {
		var b strings.Builder
		b.WriteString("+")
		for _, width := range widths {
			b.WriteString(strings.Repeat(fill, width+2))
			b.WriteString("+")
		}
		return b.String()
	}

	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
			if numeric[i] {
				b.WriteString(" " + pad + cell + " |")
			} else {
				b.WriteString(" " + cell + pad + " |")
			}
		}
		return b.String()
	}

	fmt.Fprintln(w, rule("-"))
	fmt.Fprintln(w, line(headers))
	fmt.Fprintln(w, rule("="))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
		fmt.Fprintln(w, rule("-"))
	}
}
