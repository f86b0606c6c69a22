package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	PlacePrompt    = "Enter place id: "
	UserPrompt     = "Enter roblox user id: "
	SecurityPrompt = "Enter roblox security: "
)

// Prompter reads answers to interactive questions, one line each
type Prompter struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

// NewPrompter reads from in and writes prompts to out. When in is a terminal,
// secret answers are read without echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Ask prints label and returns the trimmed line typed after it
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer to %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

// AskSecret is Ask without echo on a terminal
func (p *Prompter) AskSecret(label string) (string, error) {
	if !p.tty {
		return p.Ask(label)
	}

	fmt.Fprint(p.out, label)
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading answer to %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// Fill prompts for *value only when it is still empty, then requires an answer
func (p *Prompter) Fill(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}

	ask := p.Ask
	if secret {
		ask = p.AskSecret
	}
	answer, err := ask(label)
	if err != nil {
		return err
	}
	if answer == "" {
		return fmt.Errorf("%s is required", strings.TrimSuffix(strings.TrimPrefix(label, "Enter "), ": "))
	}
	*value = answer
	return nil
}
