package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const minBoxWidth = 40

// Section displays a section header.
func Section(title string) {
	fmt.Fprintln(os.Stdout)
	titleColor.Fprintln(os.Stdout, title)
	fmt.Fprintf(os.Stdout, "%s\n\n", strings.Repeat("=", utf8.RuneCountInString(title)))
}

// KeyValue displays a key-value pair in a formatted way.
func KeyValue(key, value string) {
	fmt.Fprintf(os.Stdout, "  %s: %s\n", key, value)
}

// Text prints a block of model or document text unchanged.
func Text(s string) {
	fmt.Fprintln(os.Stdout, strings.TrimRight(s, "\n"))
}

// Chunk prints a fragment of streamed output without a trailing newline.
func Chunk(s string) {
	fmt.Fprint(os.Stdout, s)
}

// Box writes content framed with a title to w.
func Box(w io.Writer, title, content string) {
	lines := strings.Split(content, "\n")
	width := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}
	if width < minBoxWidth {
		width = minBoxWidth
	}

	horizontal := strings.Repeat("─", width+2)
	fmt.Fprintf(w, "┌%s┐\n", horizontal)
	if title != "" {
		fmt.Fprintf(w, "│ %s │\n", pad(title, width))
		fmt.Fprintf(w, "├%s┤\n", horizontal)
	}
	for _, line := range lines {
		fmt.Fprintf(w, "│ %s │\n", pad(line, width))
	}
	fmt.Fprintf(w, "└%s┘\n", horizontal)
}

// ErrorBox displays an error message in a box on stderr.
func ErrorBox(title, message string) {
	fmt.Fprintln(os.Stderr)
	errorColor.SetWriter(os.Stderr)
	Box(os.Stderr, "✗ "+title, message)
	errorColor.UnsetWriter(os.Stderr)
	fmt.Fprintln(os.Stderr)
}

// pad right-pads s with spaces to width runes. %-*s counts bytes, which
// misaligns Arabic text.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
