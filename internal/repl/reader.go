package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// lineReader yields one line of input per call, showing prompt first.
// It returns io.EOF once input is exhausted.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

// scanReader reads newline-terminated input, e.g. a pipe or a test script.
type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newScanReader(in io.Reader, out io.Writer) *scanReader {
	return &scanReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// termReader drives a raw-mode terminal with line editing, input history
// and tab completion of command names.
type termReader struct {
	t *term.Terminal
}

func newTermReader(rw io.ReadWriter, commands func() []string) *termReader {
	t := term.NewTerminal(rw, "")
	t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' || pos != len(line) {
			return "", 0, false
		}
		match := completeCommand(strings.ToLower(line), commands())
		if match == "" {
			return "", 0, false
		}
		return match, len(match), true
	}
	return &termReader{t: t}
}

func (r *termReader) ReadLine(prompt string) (string, error) {
	r.t.SetPrompt(prompt)
	return r.t.ReadLine()
}

// completeCommand returns the only command starting with prefix, or "" when
// there is none or more than one.
func completeCommand(prefix string, commands []string) string {
	if prefix == "" {
		return ""
	}

	match := ""
	for _, c := range commands {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		if match != "" {
			return ""
		}
		match = c
	}
	return match
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
