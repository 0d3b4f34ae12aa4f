// Package cli provides the command-line interface for the application.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ANSI sequences used by Output. Color is suppressed in JSON mode, when
// stdout is not a terminal, or when NO_COLOR is set.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
)

// Output renders command results in either human or JSON form. Every
// command creates one from its own cobra.Command so the --json flag and the
// command's writer are honored.
type Output struct {
	w     io.Writer
	json  bool
	color bool
}

// NewOutput derives an Output from the command's flags and writer.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		w:     cmd.OutOrStdout(),
		json:  jsonMode,
		color: !jsonMode && stdoutIsTerminal() && os.Getenv("NO_COLOR") == "",
	}
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// IsJSON reports whether the command should emit JSON instead of text.
func (o *Output) IsJSON() bool { return o.json }

// JSON writes data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Printf writes a formatted message without styling.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format, args...)
}

// Println writes its arguments followed by a newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.w, args...)
}

// Success writes a green line.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(ansiGreen, format, args...)
}

// Error writes a red line.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(ansiRed, format, args...)
}

// Warning writes a yellow line.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(ansiYellow, format, args...)
}

// Info writes a cyan line.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(ansiCyan, format, args...)
}

// Bold writes a bold line.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(ansiBold, format, args...)
}

func (o *Output) line(style, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !o.color {
		fmt.Fprintln(o.w, msg)
		return
	}
	fmt.Fprintf(o.w, "%s%s%s\n", style, msg, ansiReset)
}

func (o *Output) paint(style, text string) string {
	if !o.color {
		return text
	}
	return style + text + ansiReset
}

// Green returns text styled green for inline use.
func (o *Output) Green(text string) string { return o.paint(ansiGreen, text) }

// Red returns text styled red for inline use.
func (o *Output) Red(text string) string { return o.paint(ansiRed, text) }

// Yellow returns text styled yellow for inline use.
func (o *Output) Yellow(text string) string { return o.paint(ansiYellow, text) }
