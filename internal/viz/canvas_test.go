package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(100, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 set, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8 set, got %U", c.Grid[0][1])
	}

	c.Clear()
	if strings.TrimRight(c.String(), "\n") != "⠀⠀" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestCanvasDisc(t *testing.T) {
	c := NewCanvas(10, 5)

	c.Disc(10, 10, 0.5)
	if c.Grid[2][5] == 0x2800 {
		t.Error("expected a tiny disc to set its center pixel")
	}

	c.Clear()
	c.Disc(10, 10, 3)
	set := 0
	for y := 0; y < c.SubHeight(); y++ {
		for x := 0; x < c.SubWidth(); x++ {
			if c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0 {
				set++
			}
		}
	}
	// lattice points within radius 3
	if set != 29 {
		t.Errorf("expected 29 pixels, got %d", set)
	}

	c.Clear()
	c.Disc(-500, 10, 1e12)
	if c.Grid[0][0] == 0x2800 {
		t.Error("expected huge off-screen disc to cover the canvas")
	}
}

func TestCanvasInk(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Ink(lipgloss.Color("#ff0000"))
	c.Set(0, 0)
	c.Ink("")
	c.Set(2, 0)

	if c.Colors[0][0] != "#ff0000" {
		t.Errorf("expected colored cell, got %q", c.Colors[0][0])
	}
	if c.Colors[0][1] != "" {
		t.Errorf("expected uncolored cell, got %q", c.Colors[0][1])
	}
	if !strings.ContainsRune(c.String(), 0x2801) {
		t.Error("expected rendered dot")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if c.Grid[i/4][i/2]&rune(pixelMap[i%4][i%2]) == 0 {
			t.Errorf("expected diagonal pixel (%d,%d) set", i, i)
		}
	}

	c.Clear()
	c.DrawLine(6, 1, 0, 1)
	for x := 0; x <= 6; x++ {
		if c.Grid[0][x/2]&rune(pixelMap[1][x%2]) == 0 {
			t.Errorf("expected pixel (%d,1) set on reversed line", x)
		}
	}
}
