package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/threefind/internal/core"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		key    string
		action core.Action
		quit   bool
	}{
		{"up", core.ActionUp, false},
		{"w", core.ActionUp, false},
		{"left", core.ActionLeft, false},
		{"a", core.ActionLeft, false},
		{"d", core.ActionRight, false},
		{"j", core.ActionDown, false},
		{" ", core.ActionFlip, false},
		{"f", core.ActionFlip, false},
		{"enter", core.ActionConfirm, false},
		{"esc", core.ActionBack, false},
		{"p", core.ActionPause, false},
		{"r", core.ActionRestart, false},
		{"q", core.ActionQuit, true},
		{"ctrl+c", core.ActionQuit, true},
		{"x", core.ActionNone, false},
	}

	km := NewKeyMapper()
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			action, quit := km.MapKey(keyMsg(tt.key))
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%q) = %v, %v; want %v, %v", tt.key, action, quit, tt.action, tt.quit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(keyMsg(" "), &frame) {
		t.Error("space should not quit")
	}
	if !frame.Has(core.ActionFlip) {
		t.Error("space should set Flip")
	}
	if !km.MapKeyToFrame(keyMsg("q"), &frame) {
		t.Error("q should quit")
	}
}

func TestMapMouse(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.MouseMsg
		kind core.PointerKind
		ok   bool
	}{
		{"left press", tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, core.PointerPress, true},
		{"right press", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight}, 0, false},
		{"wheel", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}, 0, false},
		{"drag", tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, core.PointerMove, true},
		{"release", tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}, core.PointerRelease, true},
	}

	km := NewKeyMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := km.MapMouse(tt.msg)
			if ok != tt.ok {
				t.Fatalf("MapMouse() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.kind || ev.X != tt.msg.X || ev.Y != tt.msg.Y {
				t.Errorf("MapMouse() = %+v", ev)
			}
		})
	}
}

func TestMapMouseToFrameCollapsesMotion(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	km.MapMouseToFrame(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, &frame)
	km.MapMouseToFrame(tea.MouseMsg{X: 2, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, &frame)
	km.MapMouseToFrame(tea.MouseMsg{X: 3, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, &frame)
	km.MapMouseToFrame(tea.MouseMsg{X: 3, Y: 1, Action: tea.MouseActionRelease}, &frame)

	if len(frame.Pointer) != 3 {
		t.Fatalf("expected press, move, release; got %+v", frame.Pointer)
	}
	if frame.Pointer[1].X != 3 {
		t.Errorf("moves should collapse to the latest position, got X=%d", frame.Pointer[1].X)
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()
	tests := map[string]MenuAction{
		"k":     MenuActionUp,
		"s":     MenuActionDown,
		"enter": MenuActionSelect,
		"b":     MenuActionBack,
		"tab":   MenuActionScoreboard,
		"q":     MenuActionQuit,
		"z":     MenuActionNone,
	}
	for key, want := range tests {
		if got := km.MapKeyToMenuAction(keyMsg(key)); got != want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, want %v", key, got, want)
		}
	}
}
