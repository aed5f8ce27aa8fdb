// Package banner renders the boxed startup banner printed by the CLI.
package banner

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const minWidth = 40

// Banner is a titled box with optional detail lines beneath the title
type Banner struct {
	Title string
	Lines []string
}

// New creates a Banner
func New(title string, lines ...string) *Banner {
	return &Banner{Title: title, Lines: lines}
}

func (b *Banner) width() int {
	w := utf8.RuneCountInString(b.Title)
	for _, l := range b.Lines {
		if n := utf8.RuneCountInString(l); n > w {
			w = n
		}
	}
	w += 4
	if w < minWidth {
		w = minWidth
	}
	return w
}

// Display writes the banner to w
func (b *Banner) Display(w io.Writer) {
	width := b.width()
	border := color.New(color.FgHiCyan, color.Bold)
	detail := color.New(color.FgHiWhite)

	border.Fprintln(w, "╔"+strings.Repeat("═", width)+"╗")
	border.Fprintln(w, "║"+center(b.Title, width)+"║")
	if len(b.Lines) > 0 {
		border.Fprintln(w, "╟"+strings.Repeat("─", width)+"╢")
		for _, l := range b.Lines {
			border.Fprint(w, "║")
			detail.Fprint(w, pad(l, width))
			border.Fprintln(w, "║")
		}
	}
	border.Fprintln(w, "╚"+strings.Repeat("═", width)+"╝")
}

func center(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

func pad(s string, width int) string {
	return fmt.Sprintf("  %s%s", s, strings.Repeat(" ", width-2-utf8.RuneCountInString(s)))
}
