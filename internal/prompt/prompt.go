// Package prompt collects interactive answers from a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter collects interactive answers for operations that need user input.
type Prompter interface {
	// Input asks for a free-form string. An empty answer returns fallback
	// when fallback is non-empty.
	Input(label, fallback string) (string, error)
	// InputInt asks for an integer, re-prompting until one parses. An empty
	// answer returns *fallback when fallback is non-nil.
	InputInt(label string, fallback *int) (int, error)
	// YesNo asks a yes/no question. An empty answer returns *fallback when
	// fallback is non-nil.
	YesNo(label string, fallback *bool) (bool, error)
	// Password asks for a secret without echoing it back.
	Password(label string) (string, error)
}

// Terminal is a Prompter that reads answers line by line.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the descriptor used for no-echo reads, -1 when the input is not
	// a terminal.
	fd int
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal returns a Terminal that prompts on out and reads from in.
// Passwords are read without echo when in is a file attached to a terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	return t
}

// Ask prompts with label until parse accepts the answer. A non-nil fallback is
// shown in brackets after the label and returned for an empty answer.
func Ask[T any](t *Terminal, parse func(string) (T, error), label string, fallback *T) (T, error) {
	var zero T
	for {
		if fallback != nil {
			fmt.Fprintf(t.out, "%s [%v]: ", label, *fallback)
		} else {
			fmt.Fprintf(t.out, "%s: ", label)
		}
		raw, err := t.readLine()
		if err != nil {
			return zero, err
		}
		if raw == "" && fallback != nil {
			return *fallback, nil
		}
		v, err := parse(raw)
		if err != nil {
			fmt.Fprintln(t.out, "Invalid input, please try again.")
			continue
		}
		return v, nil
	}
}

// Input implements Prompter.
func (t *Terminal) Input(label, fallback string) (string, error) {
	var def *string
	if fallback != "" {
		def = &fallback
	}
	return Ask(t, func(raw string) (string, error) { return raw, nil }, label, def)
}

// InputInt implements Prompter.
func (t *Terminal) InputInt(label string, fallback *int) (int, error) {
	return Ask(t, strconv.Atoi, label, fallback)
}

// YesNo implements Prompter. The rendered indicator marks the fallback answer,
// for example "(Y/n)" when the fallback is yes.
func (t *Terminal) YesNo(label string, fallback *bool) (bool, error) {
	indicator := "y/n"
	if fallback != nil {
		if *fallback {
			indicator = "Y/n"
		} else {
			indicator = "y/N"
		}
	}
	parse := func(raw string) (bool, error) {
		switch strings.ToLower(raw) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "":
			if fallback != nil {
				return *fallback, nil
			}
		}
		return false, errors.New("not a yes/no answer")
	}
	return Ask(t, parse, fmt.Sprintf("%s (%s)", label, indicator), nil)
}

// Password implements Prompter. Without a terminal the secret is read as a
// plain line, which keeps the method usable from tests and pipes.
func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	if t.fd >= 0 {
		secret, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			return "", fmt.Errorf("failed to read input: %w", io.ErrUnexpectedEOF)
		}
	}
	return strings.TrimSpace(line), nil
}
