package theme

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RGB is one palette entry.
type RGB [3]uint8

// Palette is an ordered colour ramp; Lookup interpolates along it.
type Palette struct {
	Name   string
	Colors []RGB
}

// LoadGPL reads a GIMP palette. Header lines, comments and blank lines are
// skipped; every other line must start with three 0..255 components.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	defer f.Close()

	p := &Palette{}
	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if skipGPLLine(line) {
			continue
		}
		c, err := parseGPLColor(line)
		if err != nil {
			return nil, fmt.Errorf("palette %s:%d: %w", path, lineNo, err)
		}
		p.Colors = append(p.Colors, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("palette %s: %w", path, errNoColors)
	}
	return p, nil
}

var errNoColors = errors.New("no colors")

func skipGPLLine(line string) bool {
	switch {
	case line == "", line[0] == '#':
		return true
	case strings.HasPrefix(line, "GIMP"), strings.HasPrefix(line, "Columns:"):
		return true
	}
	return false
}

// parseGPLColor reads "R G B [label]".
func parseGPLColor(line string) (RGB, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return RGB{}, fmt.Errorf("want R G B, got %q", line)
	}
	var c RGB
	for i := range c {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("component %d: %w", i, err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// Plasma is the built-in palette, sampled from matplotlib's plasma map.
func Plasma() *Palette {
	return &Palette{
		Name: "plasma",
		Colors: []RGB{
			{13, 8, 135}, {75, 3, 161}, {125, 3, 168}, {168, 34, 150},
			{203, 70, 121}, {229, 107, 93}, {248, 148, 65}, {253, 195, 40},
			{240, 249, 33},
		},
	}
}

// LoadOrDefault loads the palette at path, falling back to Plasma when
// path is empty or unreadable.
func LoadOrDefault(path string) *Palette {
	if path == "" {
		return Plasma()
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Plasma()
	}
	return p
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
