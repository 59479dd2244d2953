package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	Log("drums", "step %d", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "drums") || !strings.HasSuffix(lines[1], "step 3") {
		t.Errorf("unexpected line %q", lines[1])
	}
	if !strings.HasPrefix(lines[1], "[") {
		t.Errorf("missing timestamp in %q", lines[1])
	}
}

func TestLogDisabled(t *testing.T) {
	Disable()
	Log("drums", "nothing") // must not panic
	if Enabled() {
		t.Fatal("expected disabled")
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "transport", "tick")
	}
	if n := strings.Count(buf.String(), "tick"); n != 2 {
		t.Errorf("expected 2 logged ticks, got %d", n)
	}
}
