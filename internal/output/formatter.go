// Package output provides CLI output formatting for Eventlife.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Format represents the output format type.
type Format string

// Output formats.
const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ColorMode represents the color output mode.
type ColorMode string

// Color modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseFormat maps a flag value to a Format, defaulting to CLI.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return FormatJSON
	case "plain":
		return FormatPlain
	default:
		return FormatCLI
	}
}

// Formatter handles output formatting.
type Formatter struct {
	Writer    io.Writer
	Format    Format
	ColorMode ColorMode
}

// NewFormatter creates a formatter writing to stdout.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		Format:    FormatCLI,
		ColorMode: ColorAuto,
	}
}

// ColorEnabled reports whether ANSI color should be emitted.
func (f *Formatter) ColorEnabled() bool {
	switch f.ColorMode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if file, ok := f.Writer.(*os.File); ok {
		return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}
	return false
}

// Width returns the terminal width, or 80 when it cannot be determined.
func (f *Formatter) Width() int {
	if file, ok := f.Writer.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// Println writes a line.
func (f *Formatter) Println(args ...any) {
	fmt.Fprintln(f.Writer, args...)
}

// Printf writes formatted output.
func (f *Formatter) Printf(format string, args ...any) {
	fmt.Fprintf(f.Writer, format, args...)
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Bold wraps s in bold escapes when color is enabled.
func (f *Formatter) Bold(s string) string {
	if !f.ColorEnabled() {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

// Dim wraps s in dim escapes when color is enabled.
func (f *Formatter) Dim(s string) string {
	if !f.ColorEnabled() {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}
