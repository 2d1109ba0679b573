// Package replay adapts recorded actions to the window layout found at
// replay time. The offset transposer handles pure window moves; the model
// transposer handles layouts a fixed offset cannot explain.
package replay

import (
	eventdomain "gui-replay/backend/internal/event/domain"
)

// Window is the window geometry a transposition maps between.
type Window struct {
	Title  string `json:"title"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Action is the wire form of a replayable action.
type Action struct {
	Name            string   `json:"name"`
	MouseX          *float64 `json:"mouse_x,omitempty"`
	MouseY          *float64 `json:"mouse_y,omitempty"`
	MouseButtonName string   `json:"mouse_button_name,omitempty"`
	MousePressed    *bool    `json:"mouse_pressed,omitempty"`
	KeyName         string   `json:"key_name,omitempty"`
}

// FromDomain converts stored action events to their wire form.
func FromDomain(events []*eventdomain.ActionEvent) []Action {
	out := make([]Action, len(events))
	for i, e := range events {
		out[i] = Action{
			Name:            e.Name,
			MouseX:          e.MouseX,
			MouseY:          e.MouseY,
			MouseButtonName: e.MouseButtonName,
			MousePressed:    e.MousePressed,
			KeyName:         e.KeyName,
		}
	}
	return out
}

// OffsetTranspose shifts every mouse action by the displacement between the
// reference window and the active window. Keyboard actions pass through
// unchanged. It only applies when the window size is unchanged; callers fall
// back to the model transposer otherwise.
func OffsetTranspose(actions []Action, reference, active Window) ([]Action, bool) {
	if reference.Width != active.Width || reference.Height != active.Height {
		return nil, false
	}
	dx := float64(active.Left - reference.Left)
	dy := float64(active.Top - reference.Top)

	out := make([]Action, len(actions))
	for i, a := range actions {
		t := a
		if a.MouseX != nil {
			x := *a.MouseX + dx
			t.MouseX = &x
		}
		if a.MouseY != nil {
			y := *a.MouseY + dy
			t.MouseY = &y
		}
		out[i] = t
	}
	return out, true
}
