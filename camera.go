package arcard

import (
	"context"
	"image"
	"log/slog"
	"sync"
)

// FacingMode selects which physical camera a source should prefer.
type FacingMode string

const (
	FacingEnvironment FacingMode = "environment" // rear camera
	FacingUser        FacingMode = "user"        // selfie camera
)

// Constraints describe the preferred stream. Sources treat Width and Height
// as ideals and may deliver another resolution.
type Constraints struct {
	Facing FacingMode
	Width  int
	Height int
	FPS    int
}

// DefaultConstraints requests the rear camera at 1920x1080 without audio.
func DefaultConstraints() Constraints {
	return Constraints{Facing: FacingEnvironment, Width: 1920, Height: 1080, FPS: 30}
}

// TrackState reports whether a media track is still delivering data.
type TrackState uint8

const (
	TrackLive  TrackState = iota // delivering frames
	TrackEnded                   // stopped, hardware released
)

// Track is a single media track of a stream.
type Track interface {
	Kind() string
	State() TrackState
	// Stop releases the track. Calling it more than once has no effect.
	Stop()
}

// Stream is an acquired camera stream.
type Stream interface {
	Tracks() []Track
	// Frame returns the most recent video frame, or nil if none has arrived.
	Frame() image.Image
}

// FrameSource acquires camera streams. Open blocks until the user has granted
// or denied access, or ctx is done. Implementations report a declined
// permission by returning an error that matches ErrPermissionDenied.
type FrameSource interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// CameraSession owns one camera acquisition and its lifecycle state. Start may
// run on a background goroutine while Stop is called from the UI goroutine.
type CameraSession struct {
	source      FrameSource
	constraints Constraints
	log         *slog.Logger

	mu      sync.Mutex
	state   SessionState
	stream  Stream
	stopped bool
	err     *CameraError
}

// NewCameraSession creates an idle session over source. A nil logger uses
// slog.Default().
func NewCameraSession(source FrameSource, c Constraints, log *slog.Logger) *CameraSession {
	if log == nil {
		log = slog.Default()
	}
	return &CameraSession{source: source, constraints: c, log: log}
}

// Start requests the camera. On success the state becomes SessionActive and
// nil is returned. On failure the state becomes SessionError and a
// *CameraError is returned; Start may be called again to retry. After Stop,
// Start returns ErrSessionClosed without touching the device.
func (c *CameraSession) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.stopped:
		c.mu.Unlock()
		return ErrSessionClosed
	case c.state == SessionActive:
		c.mu.Unlock()
		return nil
	case c.state == SessionRequesting:
		c.mu.Unlock()
		return nil
	}
	c.state = SessionRequesting
	c.err = nil
	c.mu.Unlock()

	c.log.Debug("camera: requesting",
		"facing", c.constraints.Facing, "width", c.constraints.Width, "height", c.constraints.Height)

	stream, err := c.source.Open(ctx, c.constraints)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		// Stop ran while the permission prompt was up. The device must not
		// stay held by a stream nobody references.
		if stream != nil {
			stopTracks(stream)
		}
		return ErrSessionClosed
	}
	if err != nil {
		if stream != nil {
			stopTracks(stream)
		}
		c.err = classifyCameraError(err)
		c.state = SessionError
		c.log.Warn("camera: start failed", "kind", c.err.Kind, "err", err)
		return c.err
	}
	if stream == nil {
		c.err = &CameraError{Kind: DeviceUnavailable, Err: ErrDeviceUnavailable}
		c.state = SessionError
		return c.err
	}
	c.stream = stream
	c.state = SessionActive
	c.log.Info("camera: active", "tracks", len(stream.Tracks()))
	return nil
}

// Stop terminates every track of the stream and drops the reference. It is
// safe to call any number of times, before Start, or while Start is blocked.
func (c *CameraSession) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	c.release()
	c.state = SessionClosed
	c.log.Debug("camera: stopped")
}

// release stops and drops the current stream. Caller holds mu.
func (c *CameraSession) release() {
	if c.stream == nil {
		return
	}
	stopTracks(c.stream)
	c.stream = nil
}

func stopTracks(s Stream) {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

// State returns the current lifecycle state.
func (c *CameraSession) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last start failure, or nil.
func (c *CameraSession) Err() *CameraError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Frame returns the latest camera frame, or nil when no stream is attached.
func (c *CameraSession) Frame() image.Image {
	c.mu.Lock()
	s := c.stream
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Frame()
}
