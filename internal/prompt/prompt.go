// Package prompt supplies answers to the resolver's questions.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Justype/gaussub/internal/utils"
)

// Key identifies a question.
type Key string

const (
	KeyQueue      Key = "queue"
	KeyAllocation Key = "allocation"
	KeyNodes      Key = "nodes"
	KeyCores      Key = "cores"
	KeyMemory     Key = "memory"
	KeyVersion    Key = "version"
	KeyWalltime   Key = "walltime"
	KeyOutput     Key = "output"
)

// Question is one parameter the resolver needs.
type Question struct {
	Key     Key
	Text    string
	Options []string // menu entries shown before the prompt, if any
	Default string   // returned when the answer is empty
}

// AnswerSource answers questions, one at a time and in order.
type AnswerSource interface {
	Ask(q Question) (string, error)
}

// Terminal reads answers line by line from an interactive session.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading from r and prompting on w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w}
}

// Ask prints q and reads one line. An empty line or end of input yields the default.
func (t *Terminal) Ask(q Question) (string, error) {
	for _, opt := range q.Options {
		fmt.Fprintf(t.out, "  %s\n", opt)
	}
	text := q.Text
	if q.Default != "" {
		text = fmt.Sprintf("%s (default=%s)", text, q.Default)
	}
	fmt.Fprintf(t.out, "%s : ", utils.WrapParagraph(text, utils.ParagraphWidth))

	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer for %s: %w", q.Key, err)
	}
	if errors.Is(err, io.EOF) {
		// Keep the transcript tidy when stdin is not a terminal.
		fmt.Fprintln(t.out)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return q.Default, nil
	}
	return line, nil
}

// Scripted answers from a fixed table. Missing keys yield the default.
// Every question asked is recorded in order.
type Scripted struct {
	Answers map[Key]string
	Asked   []Question
}

// NewScripted creates a Scripted source from answers.
func NewScripted(answers map[Key]string) *Scripted {
	if answers == nil {
		answers = map[Key]string{}
	}
	return &Scripted{Answers: answers}
}

func (s *Scripted) Ask(q Question) (string, error) {
	s.Asked = append(s.Asked, q)
	if v, ok := s.Answers[q.Key]; ok && v != "" {
		return v, nil
	}
	return q.Default, nil
}

// AskedKeys returns the keys of the questions asked so far.
func (s *Scripted) AskedKeys() []Key {
	keys := make([]Key, 0, len(s.Asked))
	for _, q := range s.Asked {
		keys = append(keys, q.Key)
	}
	return keys
}
