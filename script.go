package arcard

import (
	"encoding/json"
	"fmt"
	"os"
)

// scriptStep is a single action of an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	ID     int     `json:"id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	// Pinch geometry: finger distance and angle (degrees) at start and end.
	Distance   float64 `json:"distance,omitempty"`
	ToDistance float64 `json:"toDistance,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	ToAngle    float64 `json:"toAngle,omitempty"`
	DeltaY     float64 `json:"deltaY,omitempty"`
	Frames     int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"press": true, "move": true, "release": true,
	"tap": true, "doubletap": true, "drag": true, "pinch": true,
	"wheel": true, "flip": true, "reset": true, "zoomin": true, "zoomout": true,
	"wait": true, "screenshot": true,
}

// ScriptRunner plays a scripted sequence of input and commands across frames,
// for demos and automated visual checks. Attach it with Viewer.SetScript.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON input script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range s.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// LoadScriptFile reads and parses a JSON input script.
func LoadScriptFile(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(data)
}

// SetScript attaches a runner. Its steps run from Update, before queued
// input is consumed. Pointer steps only take effect while the session is
// active, so scripts usually begin with a wait.
func (v *Viewer) SetScript(r *ScriptRunner) {
	v.script = r
}

// Done reports whether every step has executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(v *Viewer) {
	if r.done {
		return
	}
	// Let pending injections drain before advancing.
	if v.Injecting() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		v.InjectPress(st.ID, st.X, st.Y)
	case "move":
		v.InjectMove(st.ID, st.X, st.Y)
	case "release":
		v.InjectRelease(st.ID, st.X, st.Y)
	case "tap":
		v.InjectTap(st.X, st.Y)
	case "doubletap":
		v.InjectDoubleTap(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "pinch":
		v.InjectPinch(st.X, st.Y, st.Distance, st.ToDistance, st.Angle, st.ToAngle, st.Frames)
	case "wheel":
		v.HandleWheel(st.DeltaY)
	case "flip":
		v.Flip()
	case "reset":
		v.Reset()
	case "zoomin":
		v.ZoomIn()
	case "zoomout":
		v.ZoomOut()
	case "screenshot":
		v.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !v.Injecting() {
		r.done = true
	}
}
