package support

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Column widths of Service Tag, Server, Model, Support and Hardware.
var widths = [5]int{13, 32, 50, 12, 12}

var headers = [5]string{"Service Tag", "Server", "Model", "Support", "Hardware"}

// WriteTable renders rows as the fixed-width maintenance table.
func WriteTable(w io.Writer, rows []Row) error {
	rule := formatLine("+", [5]string{"-", "-", "-", "-", "-"}, '-')

	lines := []string{rule, formatLine("|", headers, ' '), rule}
	for _, r := range rows {
		lines = append(lines, formatLine("|", [5]string{r.ServiceTag, r.Server, r.Model, r.Support, r.Hardware}, ' '))
	}
	lines = append(lines, rule)

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// formatLine wraps every centred cell in sep on both sides.
func formatLine(sep string, fields [5]string, pad rune) string {
	var b strings.Builder
	for i, f := range fields {
		b.WriteString(sep)
		b.WriteString(center(f, widths[i], pad))
		b.WriteString(sep)
	}
	return b.String()
}

// center pads s to width. With odd padding the extra character goes left
// when width is odd, right otherwise. Longer strings are not truncated.
func center(s string, width int, pad rune) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	marg := width - n
	left := marg/2 + (marg & width & 1)
	p := string(pad)
	return strings.Repeat(p, left) + s + strings.Repeat(p, marg-left)
}
