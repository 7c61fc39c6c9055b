package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gpl = `GIMP Palette
Name: test
Columns: 2
# comment
  0   0   0	black
200 100  50	rust
`

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.gpl")
	if err := os.WriteFile(path, []byte(gpl), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("LoadGPL: %v", err)
	}
	if p.Name != "test" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Fatalf("Lookup(0.5) = %v", got)
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Fatal("Lookup does not clamp")
	}
	if p.Index(9) != p.Colors[1] {
		t.Fatal("Index does not clamp")
	}
}

func TestLoadOrDefault(t *testing.T) {
	if p := LoadOrDefault(""); p.Name != "plasma" {
		t.Fatalf("empty path gave %q", p.Name)
	}
	if p := LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl")); p.Name != "plasma" {
		t.Fatalf("missing file gave %q", p.Name)
	}
	empty := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(empty, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(empty); err == nil {
		t.Fatal("palette with no colors accepted")
	}
}

func TestLoadGPLRejectsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gpl")
	os.WriteFile(path, []byte("GIMP Palette\n0 0 0\n300 0 0 hot\n"), 0644)
	_, err := LoadGPL(path)
	if err == nil || !strings.Contains(err.Error(), ":3:") {
		t.Fatalf("err = %v, want line 3 reported", err)
	}
}
