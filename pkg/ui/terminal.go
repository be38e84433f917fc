package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/c2h5oh/datasize"
	"golang.org/x/term"
)

const banner = `
   ┌─┐┌─┐┌┬┐┌─┐┬ ┬
   ├┤ ├┤  │ │  ├─┤  unsplashfetch
   └  └─┘ ┴ └─┘┴ ┴  random photos, numbered
`

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Printer writes user-facing lines. Colors are applied only when the
// destination is a terminal.
type Printer struct {
	out     io.Writer
	color   bool
	verbose bool
	mu      sync.Mutex
}

// NewPrinter creates a Printer writing to out
func NewPrinter(out io.Writer, verbose bool) *Printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{out: out, color: color, verbose: verbose}
}

func (p *Printer) paint(fn func(string) string, s string) string {
	if p.color {
		return fn(s)
	}
	return s
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

// Banner prints the program banner in verbose mode
func (p *Printer) Banner() {
	if p.verbose {
		p.println(p.paint(Cyan, banner))
	}
}

// Failed reports that image index could not be fetched. The line is always
// printed.
func (p *Printer) Failed(index int, err error) {
	p.println(p.paint(Red, fmt.Sprintf("Failed to fetch image %d", index)))
	if p.verbose && err != nil {
		p.println(p.paint(Dim, fmt.Sprintf("  reason: %v", err)))
	}
}

// Saved reports a written image in verbose mode
func (p *Printer) Saved(index int, path string, size int64) {
	if !p.verbose {
		return
	}
	p.println(fmt.Sprintf("%s %s %s",
		p.paint(Green, fmt.Sprintf("Saved image %d", index)),
		path,
		p.paint(Dim, "("+HumanSize(size)+")"),
	))
}

// Error prints an error message
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	p.println(p.paint(Red, msg))
}

// Info prints a label/value pair
func (p *Printer) Info(label, value string) {
	p.println(fmt.Sprintf("%s: %s", p.paint(Cyan, label), p.paint(Yellow, value)))
}

// Summary prints the totals for a run, in green only when every requested
// image was saved
func (p *Printer) Summary(requested, saved, failed int, totalBytes int64, complete bool) {
	line := fmt.Sprintf("Fetched %d of %d images (%d failed, %s)", saved, requested, failed, HumanSize(totalBytes))
	if !complete {
		p.println(p.paint(Yellow, line))
		return
	}
	p.println(p.paint(Green, line))
}

// HumanSize formats a byte count, e.g. "1.5 MB"
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return datasize.ByteSize(n).HumanReadable()
}
