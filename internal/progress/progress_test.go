package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestForNonTerminalPrintsLines(t *testing.T) {
	var buf bytes.Buffer
	r := For(&buf)
	if _, ok := r.(*Lines); !ok {
		t.Fatalf("For(buffer) = %T, want *Lines", r)
	}
	r.Start("archiving 3 entries")
	r.Stop()
	r.Stop()

	out := buf.String()
	if !strings.HasPrefix(out, "archiving 3 entries...\n") {
		t.Fatalf("unexpected start line: %q", out)
	}
	if strings.Count(out, "done") != 1 {
		t.Fatalf("Stop should report once: %q", out)
	}
}

func TestSpinnerModelQuitsOnStop(t *testing.T) {
	m := spinnerModel{spin: spinner.New(), message: "archiving"}
	next, cmd := m.Update(stopMsg{})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if !next.(spinnerModel).stopped {
		t.Fatalf("model not marked stopped")
	}
	if !strings.Contains(next.View(), "archiving") {
		t.Fatalf("final view lost message: %q", next.View())
	}
}
