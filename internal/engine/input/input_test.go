package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestHandleEvents(t *testing.T) {
	in := New()

	events := []sdl.Event{
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 10, Y: 20},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 12, Y: 19, XRel: 2, YRel: -1},
		&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 3},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}},
		&sdl.DropEvent{Type: sdl.DROPFILE, File: "/tmp/cube.obj"},
	}
	for _, e := range events {
		if in.handle(e) {
			t.Fatalf("unexpected quit on %T", e)
		}
	}

	got := in.Events()
	if len(got) != 5 {
		t.Fatalf("expected 5 events (key repeat dropped), got %d", len(got))
	}
	if got[1].Type != EventMouseMove || got[1].DeltaX != 2 || got[1].DeltaY != -1 {
		t.Errorf("unexpected motion event %+v", got[1])
	}
	if got[2].Type != EventMouseWheel || got[2].DeltaY != 3 {
		t.Errorf("unexpected wheel event %+v", got[2])
	}
	if !in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("expected W to be pressed")
	}
	if got[4].Type != EventFileDrop || got[4].Path != "/tmp/cube.obj" {
		t.Errorf("unexpected drop event %+v", got[4])
	}

	if !in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("expected left button down")
	}
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	if in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("expected left button released")
	}
}

func TestHandleQuit(t *testing.T) {
	in := New()
	if !in.handle(&sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("expected quit")
	}
	if len(in.Events()) != 1 || in.Events()[0].Type != EventQuit {
		t.Errorf("unexpected events %+v", in.Events())
	}
}
