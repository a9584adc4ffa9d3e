package arcard

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Viewer is the interaction controller: it owns the committed card state and
// wires the camera session, orientation sensor, gesture recognizer and
// double-tap detector behind one API.
//
// Every method must be called from a single goroutine (the game loop).
// Camera and sensor results arrive on background goroutines and are queued;
// Update applies them, so state only ever changes on the caller's goroutine.
// A closed Viewer cannot be reopened; create a new one.
type Viewer struct {
	cfg   Config
	id    uuid.UUID
	log   *slog.Logger
	sink  EventSink
	now   func() time.Time
	debug bool

	camera   *CameraSession
	sensor   *OrientationSensor
	gestures *GestureRecognizer
	taps     *DoubleActionDetector
	anim     *TransformAnimator
	hints    hintOverlay

	state      SessionState
	content    Content
	callbacks  Callbacks
	forwarding bool
	committed  ObjectTransform
	live       ObjectTransform
	tilt       TiltVector
	err        error
	rendered   RenderTransform

	handlers []transformHandler
	nextID   uint32

	injectQueue [][]PointerEvent
	script      *ScriptRunner
	screenshots []string

	mu     sync.Mutex
	inbox  []func()
	closed bool
	cancel context.CancelFunc
}

type transformHandler struct {
	id uint32
	fn func(RenderTransform)
}

// CallbackHandle allows removing a registered transform observer.
type CallbackHandle struct {
	id uint32
	v  *Viewer
}

// Remove unregisters the observer. Calling it twice has no effect.
func (h CallbackHandle) Remove() {
	if h.v == nil {
		return
	}
	s := h.v.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = transformHandler{}
			h.v.handlers = s[:len(s)-1]
			return
		}
	}
}

// NewViewer creates an idle viewer. camera must not be nil; motion may be nil,
// in which case tilt stays at zero.
func NewViewer(cfg Config, camera FrameSource, motion MotionSource) *Viewer {
	v := &Viewer{
		cfg:      cfg,
		id:       uuid.New(),
		now:      time.Now,
		gestures: NewGestureRecognizer(cfg.Gesture.TapSlop, cfg.Gesture.MinPinchDistance),
		taps:     NewDoubleActionDetector(cfg.Flip.DoubleTapWindow()),
		committed: ObjectTransform{
			Scale: clampScale(cfg.Gesture.DefaultScale),
		},
	}
	v.setLogger(slog.Default())
	v.camera = NewCameraSession(camera, cfg.Camera.Constraints(), v.log)
	v.sensor = NewOrientationSensor(motion, v.log)
	v.live = v.committed
	v.rendered = Compose(v.committed, v.tilt)
	v.anim = NewTransformAnimator(cfg.Springs, v.rendered)
	return v
}

func (v *Viewer) setLogger(log *slog.Logger) {
	v.log = log.With("session", v.id.String())
	if v.camera != nil {
		v.camera.log = v.log
	}
	if v.sensor != nil {
		v.sensor.log = v.log
	}
}

// SetLogger replaces the logger. Call before Open.
func (v *Viewer) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	v.setLogger(log)
}

// SetEventSink sets the optional event bridge.
func (v *Viewer) SetEventSink(sink EventSink) { v.sink = sink }

// SetClock replaces the time source used to stamp pointer events that carry
// no timestamp.
func (v *Viewer) SetClock(now func() time.Time) { v.now = now }

// SetDebugMode enables per-frame timing logs at debug level.
func (v *Viewer) SetDebugMode(enabled bool) { v.debug = enabled }

// ID returns the session id used in logs and events.
func (v *Viewer) ID() uuid.UUID { return v.id }

// Open starts camera acquisition and the orientation sensor. The two run
// independently: a denied camera does not stop tilt updates, and a missing
// sensor never delays the camera. Camera failures are delivered through
// Callbacks.OnError from Update and leave the viewer in SessionError.
func (v *Viewer) Open(content Content, callbacks Callbacks) error {
	switch v.state {
	case SessionIdle:
	case SessionClosed:
		return ErrViewerClosed
	default:
		return ErrAlreadyOpen
	}
	v.content = content
	v.callbacks = callbacks

	ctx, cancel := context.WithCancel(context.Background())
	v.mu.Lock()
	v.cancel = cancel
	v.mu.Unlock()

	v.setState(SessionRequesting, nil)
	v.sensor.Subscribe(func(t TiltVector) {
		v.post(func() { v.tilt = t })
	})
	v.startCamera(ctx)
	return nil
}

// Retry restarts camera acquisition after a failure. It is a no-op unless the
// viewer is in SessionError.
func (v *Viewer) Retry() {
	if v.state != SessionError {
		return
	}
	v.mu.Lock()
	cancel := v.cancel
	v.mu.Unlock()
	if cancel == nil {
		return
	}
	ctx, newCancel := context.WithCancel(context.Background())
	v.mu.Lock()
	v.cancel = newCancel
	v.mu.Unlock()
	cancel()

	v.setState(SessionRequesting, nil)
	v.startCamera(ctx)
}

func (v *Viewer) startCamera(ctx context.Context) {
	go func() {
		err := v.camera.Start(ctx)
		v.post(func() { v.cameraResult(err) })
	}()
}

func (v *Viewer) cameraResult(err error) {
	if v.state != SessionRequesting {
		return
	}
	if errors.Is(err, ErrSessionClosed) {
		return
	}
	if err != nil {
		v.setState(SessionError, err)
		if v.callbacks.OnError != nil {
			v.callbacks.OnError(err)
		}
		return
	}
	v.setState(SessionActive, nil)
	v.forwarding = true
	v.hints.start(v.cfg.Hints)
}

// Close tears the viewer down: input forwarding stops and any gesture in
// progress is discarded uncommitted, then the sensor is unsubscribed and the
// camera released. It is safe to call at any time and any number of times,
// including while the camera permission prompt is still open.
func (v *Viewer) Close() {
	if v.state == SessionClosed {
		return
	}
	v.forwarding = false
	v.injectQueue = v.injectQueue[:0]
	v.gestures.Cancel()
	v.taps.Reset()
	v.live = v.committed

	v.sensor.Unsubscribe()
	v.camera.Stop()

	v.mu.Lock()
	v.closed = true
	v.inbox = nil
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	v.setState(SessionClosed, nil)
	if v.callbacks.OnClose != nil {
		v.callbacks.OnClose()
	}
}

// post queues fn to run on the next Update. Safe from any goroutine.
func (v *Viewer) post(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.inbox = append(v.inbox, fn)
}

func (v *Viewer) drain() int {
	v.mu.Lock()
	batch := v.inbox
	v.inbox = nil
	v.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Update applies queued camera and sensor results, feeds scripted input,
// advances the springs by dt seconds and notifies transform observers.
func (v *Viewer) Update(dt float64) {
	var stats debugStats
	var t0 time.Time
	if v.debug {
		t0 = time.Now()
	}

	stats.drained = v.drain()
	if v.script != nil {
		v.script.step(v)
	}
	stats.injected = v.processInjectedInput()
	v.hints.update(dt)

	if v.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	if v.gestures.Mode() != GestureIdle {
		// Fingers move the card directly once any glide in progress has landed.
		v.anim.Follow(v.Target())
	} else {
		v.anim.SetTarget(v.Target())
	}
	v.rendered = v.anim.Step(dt)
	for _, h := range v.handlers {
		h.fn(v.rendered)
	}

	if v.debug {
		stats.animTime = time.Since(t0)
		stats.observers = len(v.handlers)
		v.debugLog(stats)
	}
}

// HandlePointer forwards one pointer sample to the gesture recognizer. It is
// ignored unless the session is active.
func (v *Viewer) HandlePointer(ev PointerEvent) {
	if !v.forwarding {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = v.now()
	}
	res := v.gestures.Handle(ev, v.committed)
	switch {
	case res.Commit:
	case res.Mode == GestureIdle:
		v.live = v.committed
		return
	default:
		v.live = res.Transform
		v.live.Flipped = v.committed.Flipped
		return
	}

	v.commit(res.Transform)
	if res.Tap {
		v.hints.dismissInstructions()
		v.emit(EventTap)
		if v.taps.Record(ev.Time) {
			v.Flip()
		}
	}
}

// HandleWheel applies a desktop scroll step. A positive deltaY shrinks the
// card. Ignored while a gesture is in progress or the session is inactive.
func (v *Viewer) HandleWheel(deltaY float64) {
	if !v.forwarding {
		return
	}
	next, ok := v.gestures.Wheel(deltaY, v.committed, v.cfg.Gesture.WheelStep)
	if !ok {
		return
	}
	v.commit(next)
}

// commit writes position, scale and rotation into the committed transform.
// The flip state is never changed here.
func (v *Viewer) commit(t ObjectTransform) {
	v.committed.Position = Vec2{finite(t.Position.X), finite(t.Position.Y)}
	v.committed.Scale = clampScale(t.Scale)
	v.committed.Rotation = finite(t.Rotation)
	v.live = v.committed
	v.emit(EventCommit)
}

// Flip toggles the visible face.
func (v *Viewer) Flip() {
	if v.state == SessionClosed {
		return
	}
	v.committed.Flipped = !v.committed.Flipped
	v.live.Flipped = v.committed.Flipped
	v.hints.dismissFlipHint()
	v.emit(EventFlip)
	if v.callbacks.OnFlip != nil {
		v.callbacks.OnFlip(v.committed.Flipped)
	}
}

// ZoomIn grows the card by one zoom step.
func (v *Viewer) ZoomIn() { v.zoom(v.cfg.Gesture.ZoomStep) }

// ZoomOut shrinks the card by one zoom step.
func (v *Viewer) ZoomOut() { v.zoom(-v.cfg.Gesture.ZoomStep) }

func (v *Viewer) zoom(step float64) {
	if v.state == SessionClosed || v.gestures.Mode() != GestureIdle {
		return
	}
	next := v.committed
	next.Scale = clampScale(next.Scale + step)
	v.commit(next)
}

// Reset recenters the card at the default scale with no rotation. The flip
// state is kept. A gesture in progress is discarded.
func (v *Viewer) Reset() {
	if v.state == SessionClosed {
		return
	}
	v.gestures.Cancel()
	v.commit(ObjectTransform{
		Scale:   v.cfg.Gesture.DefaultScale,
		Flipped: v.committed.Flipped,
	})
}

// OnTransform registers an observer of the animated render transform. It is
// called from Update once per frame.
func (v *Viewer) OnTransform(fn func(RenderTransform)) CallbackHandle {
	v.nextID++
	v.handlers = append(v.handlers, transformHandler{id: v.nextID, fn: fn})
	return CallbackHandle{id: v.nextID, v: v}
}

func (v *Viewer) setState(s SessionState, err error) {
	v.state = s
	v.err = err
	v.log.Info("viewer: state", "state", s.String())
	if v.sink != nil {
		v.sink.EmitEvent(CardEvent{
			Type:      EventStateChanged,
			Session:   v.id,
			State:     s,
			Transform: v.committed,
			Err:       err,
		})
	}
}

func (v *Viewer) emit(t EventType) {
	if v.sink == nil {
		return
	}
	v.sink.EmitEvent(CardEvent{Type: t, Session: v.id, State: v.state, Transform: v.committed})
}

// State returns the lifecycle state.
func (v *Viewer) State() SessionState { return v.state }

// Err returns the camera failure that put the viewer into SessionError.
func (v *Viewer) Err() error { return v.err }

// Committed returns the committed object transform.
func (v *Viewer) Committed() ObjectTransform { return v.committed }

// Live returns the transform currently shown: the transient gesture value
// while a gesture is in progress, the committed one otherwise.
func (v *Viewer) Live() ObjectTransform { return v.live }

// Tilt returns the latest smoothed tilt.
func (v *Viewer) Tilt() TiltVector { return v.tilt }

// GestureMode returns the recognizer's current mode.
func (v *Viewer) GestureMode() GestureMode { return v.gestures.Mode() }

// Target returns the composed transform the springs are heading to.
func (v *Viewer) Target() RenderTransform { return Compose(v.live, v.tilt) }

// Transform returns the animated transform computed by the last Update.
func (v *Viewer) Transform() RenderTransform { return v.rendered }

// Content returns the faces passed to Open.
func (v *Viewer) Content() Content { return v.content }

// Frame returns the latest camera frame, or nil.
func (v *Viewer) Frame() image.Image { return v.camera.Frame() }

// Hints returns the opacity of the on-screen hints.
func (v *Viewer) Hints() HintState { return v.hints.state() }

// Config returns the configuration the viewer was built with.
func (v *Viewer) Config() Config { return v.cfg }
