package arcard

import "testing"

func TestHintTimesOut(t *testing.T) {
	var h hint
	h.show(1)
	h.update(0.5)
	if h.alpha != 1 || !h.visible {
		t.Fatalf("hint faded early: %+v", h)
	}
	h.update(0.6)
	if h.visible || h.alpha != 0 {
		t.Errorf("hint still shown after timeout and fade: alpha=%v", h.alpha)
	}
}

func TestHintDismissFades(t *testing.T) {
	var h hint
	h.show(10)
	h.dismiss()
	h.update(hintFadeSeconds / 2)
	if h.alpha <= 0 || h.alpha >= 1 {
		t.Errorf("alpha mid-fade = %v", h.alpha)
	}
	mid := h.alpha
	h.dismiss() // no restart
	h.update(0.05)
	if h.alpha >= mid {
		t.Errorf("alpha rose from %v to %v", mid, h.alpha)
	}
	h.update(hintFadeSeconds)
	if h.visible {
		t.Error("hint visible after fade")
	}
}

func TestHintZeroDuration(t *testing.T) {
	var h hint
	h.show(0)
	h.update(1)
	h.dismiss()
	if h.visible || h.alpha != 0 || h.fade != nil {
		t.Errorf("zero-duration hint = %+v", h)
	}
}

func TestHintOverlayFlipHintOnce(t *testing.T) {
	var o hintOverlay
	cfg := HintsConfig{InstructionsMS: 4000, FlipHintMS: 6000}
	o.start(cfg)
	if s := o.state(); s.Instructions != 1 || s.FlipHint != 1 {
		t.Fatalf("state = %+v", s)
	}

	o.update(4.5)
	if s := o.state(); s.Instructions != 0 || s.FlipHint != 1 {
		t.Errorf("after 4.5s = %+v", s)
	}

	o.dismissFlipHint()
	o.update(1)
	if s := o.state(); s.FlipHint != 0 {
		t.Errorf("flip hint = %v after flip", s.FlipHint)
	}

	// A camera restart shows the instructions again but not the flip hint.
	o.start(cfg)
	if s := o.state(); s.Instructions != 1 || s.FlipHint != 0 {
		t.Errorf("after restart = %+v", s)
	}
}
