package theme

import (
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Name != "Dusk" || len(p.Colors) != 11 {
		t.Fatalf("palette %q with %d colors", p.Name, len(p.Colors))
	}
	if got := p.Lookup(RoleSuccess); got != (RGB{252, 232, 96}) {
		t.Errorf("success = %v", got)
	}
}

func TestParseGPL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []RGB
		wantErr bool
	}{
		{"plain", "GIMP Palette\nName: x\n0 0 0\n255 255 255 white\n", []RGB{{0, 0, 0}, {255, 255, 255}}, false},
		{"clamped", "300 -4 10\n", []RGB{{255, 0, 10}}, false},
		{"comments only", "GIMP Palette\n# nothing\n", nil, true},
	}
	for _, tt := range tests {
		p, err := ParseGPL(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.name, err)
			continue
		}
		if err != nil {
			continue
		}
		if len(p.Colors) != len(tt.want) {
			t.Errorf("%s: colors = %v", tt.name, p.Colors)
			continue
		}
		for i := range tt.want {
			if p.Colors[i] != tt.want[i] {
				t.Errorf("%s: color %d = %v, want %v", tt.name, i, p.Colors[i], tt.want[i])
			}
		}
	}
}

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("midpoint = %v", got)
	}
	if p.Index(9) != p.Colors[1] || p.Index(-1) != p.Colors[0] {
		t.Error("index not clamped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/palette.gpl"); err == nil {
		t.Error("missing palette loaded")
	}
	th, err := Load("")
	if err != nil || th.Palette.Name != "Dusk" {
		t.Errorf("default theme: %v", err)
	}
}
