package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestMaxLineWidth(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{"empty", []string{}, 0},
		{"single", []string{"hello"}, 5},
		{"multiple", []string{"hi", "hello", "hey"}, 5},
		{"with ansi", []string{"\x1b[31mred\x1b[0m"}, 3},
		{"wide runes", []string{"日本"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maxLineWidth(tt.lines); got != tt.want {
				t.Errorf("maxLineWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		name   string
		p      Placement
		w, h   int
		wantX  int
		wantY  int
		screen [2]int
	}{
		{"center", Center, 10, 4, 35, 8, [2]int{80, 20}},
		{"bottom right", BottomRight, 10, 3, 69, 16, [2]int{80, 20}},
		{"top right", TopRight, 10, 3, 69, 1, [2]int{80, 20}},
		{"larger than screen", Center, 100, 40, 0, 0, [2]int{80, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := origin(tt.p, tt.w, tt.h, tt.screen[0], tt.screen[1])
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("origin = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestCompositeRow(t *testing.T) {
	tests := []struct {
		name  string
		bg    string
		fg    string
		x     int
		want  string
		width int
	}{
		{"middle", "aaaaaaaaaa", "XX", 4, "aaaaXXaaaa", 2},
		{"left edge", "aaaaa", "XX", 0, "XXaaa", 2},
		{"short background", "aa", "XX", 5, "aa   XX", 2},
		{"padded fg", "aaaaaaaa", "X", 2, "aaX aaaa", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(compositeRow(tt.bg, tt.fg, tt.x, tt.width, false))
			if got != tt.want {
				t.Errorf("compositeRow = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverlay_KeepsHeight(t *testing.T) {
	bg := strings.Repeat("background line\n", 9) + "background line"
	out := Overlay(bg, "one\ntwo", 20, 10, Center, true)
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "one") || !strings.Contains(plain, "two") {
		t.Error("overlay content missing")
	}
}

func TestOverlay_UndimmedKeepsBackground(t *testing.T) {
	bg := "\x1b[31mred\x1b[0m\nplain"
	out := Overlay(bg, "X", 10, 2, BottomRight, false)
	if !strings.HasPrefix(out, "\x1b[31mred") {
		t.Errorf("undimmed overlay should keep background styling, got %q", out)
	}
}

func TestOverlayModal_DimsBackground(t *testing.T) {
	out := OverlayModal("\x1b[31mred\x1b[0m", "M", 10, 3)
	if strings.Contains(out, "\x1b[31m") {
		t.Error("modal background should lose its own colors")
	}
	if !strings.Contains(ansi.Strip(out), "M") {
		t.Error("modal content missing")
	}
}
