package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Console writes human readable progress lines
type Console struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	bold   func(a ...any) string
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.noColor {
		color.NoColor = true
	}

	c.green = c.colorize(color.FgGreen)
	c.red = c.colorize(color.FgRed)
	c.yellow = c.colorize(color.FgYellow)
	c.cyan = c.colorize(color.FgCyan)
	c.bold = c.colorize(color.Bold)
	return c
}

func (c *Console) colorize(attr color.Attribute) func(a ...any) string {
	col := color.New(attr)
	if c.noColor {
		col.DisableColor()
	}
	return col.SprintFunc()
}

// WithWriter sets where regular output goes
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

// WithErrWriter sets where errors go
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(c *Console) {
		c.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(c *Console) {
		c.noColor = nc
	}
}

// Verbose reports whether Detail lines are shown
func (c *Console) Verbose() bool {
	return c.verbose
}

// Info prints a plain progress line
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.writer, format+"\n", args...)
}

// Detail prints a progress line in verbose mode only
func (c *Console) Detail(format string, args ...any) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(c.writer, "  %s\n", c.cyan(fmt.Sprintf(format, args...)))
}

// Success prints a line prefixed with a check mark
func (c *Console) Success(format string, args ...any) {
	fmt.Fprintf(c.writer, "%s %s\n", c.green("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a highlighted notice
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintf(c.writer, "%s %s\n", c.yellow("!"), fmt.Sprintf(format, args...))
}

// Failure prints a failed step
func (c *Console) Failure(format string, args ...any) {
	fmt.Fprintf(c.writer, "%s %s\n", c.red("✗"), fmt.Sprintf(format, args...))
}

// Block prints a multi-line payload, such as a response body, indented
func (c *Console) Block(title, body string) {
	fmt.Fprintln(c.writer, c.bold(title))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if line == "" {
			fmt.Fprintln(c.writer)
			continue
		}
		fmt.Fprintf(c.writer, "  %s\n", line)
	}
}

// Error prints an error to the error writer
func (c *Console) Error(err error) {
	fmt.Fprintf(c.errWriter, "%s %v\n", c.red("Error:"), err)
}

// Header prints the banner shown at the start of a run
func (c *Console) Header(version string) {
	fmt.Fprintf(c.writer, "%s %s\n\n", c.bold("hookshot"), version)
}
