package arcard

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// hintFadeSeconds is how long a dismissed hint takes to fade out.
const hintFadeSeconds = 0.4

// HintState is the opacity of each on-screen hint, in [0, 1].
type HintState struct {
	Instructions float64
	FlipHint     float64
}

// hint is one timed overlay. It stays fully opaque until its time runs out or
// it is dismissed, then fades out with a tween.
type hint struct {
	remaining float64
	alpha     float64
	visible   bool
	fade      *gween.Tween
}

func (h *hint) show(seconds float64) {
	if seconds <= 0 {
		*h = hint{}
		return
	}
	*h = hint{remaining: seconds, alpha: 1, visible: true}
}

func (h *hint) dismiss() {
	if !h.visible || h.fade != nil {
		return
	}
	h.fade = gween.New(float32(h.alpha), 0, hintFadeSeconds, ease.OutQuad)
}

func (h *hint) update(dt float64) {
	if !h.visible {
		return
	}
	if h.fade == nil {
		h.remaining -= dt
		if h.remaining > 0 {
			return
		}
		h.dismiss()
	}
	val, done := h.fade.Update(float32(dt))
	h.alpha = float64(val)
	if done {
		*h = hint{}
	}
}

// hintOverlay holds the gesture instructions, shown when the camera comes
// up, and the flip hint, shown until the first flip.
type hintOverlay struct {
	instructions hint
	flip         hint
	flipped      bool
}

func (o *hintOverlay) start(cfg HintsConfig) {
	o.instructions.show(float64(cfg.InstructionsMS) / 1000)
	if !o.flipped {
		o.flip.show(float64(cfg.FlipHintMS) / 1000)
	}
}

func (o *hintOverlay) dismissInstructions() { o.instructions.dismiss() }

func (o *hintOverlay) dismissFlipHint() {
	o.flipped = true
	o.flip.dismiss()
}

func (o *hintOverlay) update(dt float64) {
	o.instructions.update(dt)
	o.flip.update(dt)
}

func (o *hintOverlay) state() HintState {
	return HintState{Instructions: o.instructions.alpha, FlipHint: o.flip.alpha}
}
