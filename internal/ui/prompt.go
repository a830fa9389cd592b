package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// Confirmer reads the one line of input the removal prompt needs
type Confirmer interface {
	// ReadLine shows label and returns the raw line the user typed
	ReadLine(label string) (string, error)
}

// IsYes reports whether input is an affirmative answer: the word "yes" in
// any letter case, surrounding whitespace ignored. "y" is not accepted.
func IsYes(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "yes")
}

// Confirm asks through c and returns true only for IsYes input.
// EOF and interrupts count as a refusal.
func Confirm(c Confirmer, label string) (bool, error) {
	line, err := c.ReadLine(label)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		return false, err
	}
	return IsYes(line), nil
}

// NewConfirmer returns a promptui-backed confirmer when in is a terminal
// and a plain line reader otherwise (pipes, tests, CI)
func NewConfirmer(in *os.File, out io.Writer) Confirmer {
	if in != nil && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())) {
		return &PromptConfirmer{In: in, Out: out}
	}
	return NewLineConfirmer(in, out)
}

// LineConfirmer reads a line from any reader
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer creates a LineConfirmer
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// ReadLine implements Confirmer
func (l *LineConfirmer) ReadLine(label string) (string, error) {
	Warning.Fprintf(l.out, "%s: ", label)

	line, err := l.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptConfirmer reads the answer with promptui
type PromptConfirmer struct {
	In  io.ReadCloser
	Out io.Writer
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// ReadLine implements Confirmer
func (p *PromptConfirmer) ReadLine(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Stdin: p.In,
	}
	if p.Out != nil {
		prompt.Stdout = nopWriteCloser{p.Out}
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return "", fmt.Errorf("confirmation cancelled: %w", promptui.ErrInterrupt)
		}
		return "", err
	}

	return result, nil
}
