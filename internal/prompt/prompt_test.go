package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTerminalAsk(t *testing.T) {
	in := strings.NewReader("3\n\n  ckpt  \n")
	var out bytes.Buffer
	term := NewTerminal(in, &out)

	tests := []struct {
		q    Question
		want string
	}{
		{Question{Key: KeyNodes, Text: "How many nodes do you want to use?", Default: "1"}, "3"},
		{Question{Key: KeyCores, Text: "How many cores?", Default: "16"}, "16"},
		{Question{Key: KeyQueue, Text: "Which queue?", Options: []string{"batch", "bf"}, Default: "batch"}, "ckpt"},
		// Input exhausted: default
		{Question{Key: KeyWalltime, Text: "How long?", Default: "1"}, "1"},
	}
	for _, tt := range tests {
		got, err := term.Ask(tt.q)
		if err != nil {
			t.Fatalf("Ask(%s) error: %v", tt.q.Key, err)
		}
		if got != tt.want {
			t.Errorf("Ask(%s) = %q; want %q", tt.q.Key, got, tt.want)
		}
	}

	transcript := out.String()
	if !strings.Contains(transcript, "(default=1)") {
		t.Errorf("prompt did not show the default:\n%s", transcript)
	}
	if !strings.Contains(transcript, "  bf\n") {
		t.Errorf("prompt did not list options:\n%s", transcript)
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted(map[Key]string{KeyNodes: "2"})

	if got, _ := s.Ask(Question{Key: KeyQueue, Default: "batch"}); got != "batch" {
		t.Errorf("missing answer = %q; want default", got)
	}
	if got, _ := s.Ask(Question{Key: KeyNodes, Default: "1"}); got != "2" {
		t.Errorf("scripted answer = %q; want 2", got)
	}

	want := []Key{KeyQueue, KeyNodes}
	if diff := cmp.Diff(want, s.AskedKeys()); diff != "" {
		t.Errorf("AskedKeys mismatch (-want +got):\n%s", diff)
	}
}
