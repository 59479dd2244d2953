package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go-drummer/catalog"
	"go-drummer/studio"
)

func TestPrintTables(t *testing.T) {
	cat := catalog.Default()
	for _, table := range tableNames() {
		var buf bytes.Buffer
		if err := printTable(&buf, cat, table, ""); err != nil {
			t.Fatalf("%s: %v", table, err)
		}
		if strings.Count(buf.String(), "\n") == 0 {
			t.Errorf("%s: empty table", table)
		}
	}
}

func TestPrintTableLines(t *testing.T) {
	cat := catalog.Default()
	var buf bytes.Buffer
	if err := printTable(&buf, cat, "patterns", ""); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != len(cat.Patterns) {
		t.Errorf("%d lines for %d patterns", n, len(cat.Patterns))
	}
	if !strings.Contains(buf.String(), "rock_basic") {
		t.Error("rock_basic missing")
	}
}

func TestPrintTableCustomFormat(t *testing.T) {
	var buf bytes.Buffer
	err := printTable(&buf, catalog.Default(), "scales", `{{range .Items}}{{.ID | upper}} {{end}}`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "MAJOR MINOR") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintTableErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := printTable(&buf, catalog.Default(), "chords", ""); err == nil {
		t.Error("unknown table accepted")
	}
	if err := printTable(&buf, catalog.Default(), "scales", "{{"); err == nil {
		t.Error("broken template accepted")
	}
}

func TestSceneLength(t *testing.T) {
	tests := []struct {
		sc   studio.Scene
		bars int
		d    time.Duration
		want time.Duration
	}{
		{studio.Scene{}, 2, 0, 4 * time.Second},
		{studio.Scene{BPM: 60}, 1, 0, 4 * time.Second},
		{studio.Scene{BPM: 60}, 1, time.Second, time.Second},
	}
	for _, tt := range tests {
		if got := sceneLength(tt.sc, tt.bars, tt.d); got != tt.want {
			t.Errorf("sceneLength(%+v, %d, %v) = %v, want %v", tt.sc, tt.bars, tt.d, got, tt.want)
		}
	}
}
