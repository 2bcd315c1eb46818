package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("NewScreen(80, 24) is %dx%d", s.Width(), s.Height())
	}
	if strings.Trim(s.String(), " \n") != "" {
		t.Error("New screen should be filled with spaces")
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}

	// Out of bounds writes are dropped, reads return space
	for _, p := range [][2]int{{-1, 0}, {100, 0}, {0, -1}, {0, 100}} {
		s.Set(p[0], p[1], 'A')
		if s.Get(p[0], p[1]) != ' ' {
			t.Errorf("Get(%d, %d) out of bounds should return space", p[0], p[1])
		}
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawRect(NewRect(0, 0, 4, 3), 'X')
	s.SetColored(1, 1, '●', ColorRed)

	s.Clear()

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if c := s.GetCell(x, y); c != blankCell {
				t.Errorf("After Clear, cell (%d, %d) = %+v", x, y, c)
			}
		}
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Score")

	if got := s.Row(1)[2:7]; got != "Score" {
		t.Errorf("DrawText wrote %q, expected %q", got, "Score")
	}

	// Clipped at the right edge
	s.DrawText(18, 0, "Hello")
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	tests := []struct {
		width int
		text  string
		x     int
	}{
		{20, "Hi", 9},
		{21, "Hi", 9},
		{10, "●■▲", 3}, // Runes, not bytes
	}

	for _, tc := range tests {
		s := NewScreen(tc.width, 1)
		s.DrawTextCentered(0, tc.text)
		if got := s.Get(tc.x, 0); got != []rune(tc.text)[0] {
			t.Errorf("width %d %q: Get(%d) = %q", tc.width, tc.text, tc.x, got)
		}
	}
}

func TestScreenDrawRect(t *testing.T) {
	s := NewScreen(6, 6)
	s.DrawRect(NewRect(2, 2, 3, 3), '#')

	want := []string{
		"      ",
		"      ",
		"  ### ",
		"  ### ",
		"  ### ",
		"      ",
	}
	if got := s.String(); got != strings.Join(want, "\n") {
		t.Errorf("DrawRect:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}

func TestScreenDrawBoxColored(t *testing.T) {
	s := NewScreen(7, 5)
	s.DrawBoxColored(NewRect(1, 1, 5, 4), ColorGray)

	want := []string{
		"       ",
		" ┌───┐ ",
		" │   │ ",
		" │   │ ",
		" └───┘ ",
	}
	if got := s.String(); got != strings.Join(want, "\n") {
		t.Errorf("DrawBoxColored:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
	if s.GetCell(1, 1).Color != ColorGray || s.GetCell(3, 2).Color != ColorDefault {
		t.Error("Only the outline should be colored")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")

	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Fatalf("After resize, dimensions should be 8x4, got %dx%d", s.Width(), s.Height())
	}
	if !strings.HasPrefix(s.Row(0), "Hello") {
		t.Errorf("Content should be preserved, row 0 = %q", s.Row(0))
	}

	s.Resize(15, 8)
	if !strings.HasPrefix(s.Row(0), "Hello") {
		t.Errorf("Content should be preserved after enlarging, row 0 = %q", s.Row(0))
	}
	if s.Row(7) != strings.Repeat(" ", 15) {
		t.Errorf("New rows should be blank, got %q", s.Row(7))
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(6, 3)
	s.DrawTextColored(1, 1, "ab", ColorRed)

	if cell := s.GetCell(2, 1); cell.Rune != 'b' || cell.Color != ColorRed {
		t.Errorf("GetCell(2, 1) = %+v, expected 'b' in red", cell)
	}

	// Plain Set resets the color
	s.Set(2, 1, 'c')
	if s.GetCell(2, 1).Color != ColorDefault {
		t.Error("Set should use the default color")
	}

	// Colors are not part of the plain string
	if s.Row(1) != " ac   " {
		t.Errorf("Row(1) = %q, expected %q", s.Row(1), " ac   ")
	}
	if s.Row(-1) != "      " {
		t.Errorf("Out of bounds row should be spaces, got %q", s.Row(-1))
	}
}
