package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// TerminalListener reads utterances line by line, typically from stdin.
type TerminalListener struct {
	scanner *bufio.Scanner
	prompt  io.Writer
}

func NewTerminalListener(in io.Reader, prompt io.Writer) *TerminalListener {
	return &TerminalListener{scanner: bufio.NewScanner(in), prompt: prompt}
}

func (l *TerminalListener) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.prompt != nil {
		fmt.Fprint(l.prompt, "> ")
	}
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return l.scanner.Text(), nil
}

// TerminalSpeaker prints replies, typically to stdout.
type TerminalSpeaker struct {
	out io.Writer
}

func NewTerminalSpeaker(out io.Writer) *TerminalSpeaker {
	return &TerminalSpeaker{out: out}
}

func (s *TerminalSpeaker) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}
