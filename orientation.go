package arcard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Tilt smoothing constants.
const (
	tiltSmoothing    = 0.15 // exponential smoothing factor per sample
	tiltGain         = 0.3  // degrees of card tilt per degree of device tilt
	tiltBetaBaseline = 45.0 // natural viewing angle treated as zero tilt
)

// MotionSample is one raw device-orientation reading in degrees. Beta is the
// front-to-back tilt, Gamma the left-to-right tilt.
type MotionSample struct {
	Beta  float64
	Gamma float64
	Time  time.Time
}

// MotionSource delivers raw orientation samples until ctx is done. The
// returned channel is closed when the source stops.
type MotionSource interface {
	Samples(ctx context.Context) (<-chan MotionSample, error)
}

// PermissionRequester is implemented by motion sources that need an explicit
// grant before delivering samples.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
}

// TiltFilter smooths raw samples into a bounded TiltVector.
type TiltFilter struct {
	beta, gamma float64
}

// Push folds one raw sample into the running averages and returns the
// resulting tilt.
func (f *TiltFilter) Push(beta, gamma float64) TiltVector {
	f.beta += (beta - f.beta) * tiltSmoothing
	f.gamma += (gamma - f.gamma) * tiltSmoothing
	return f.Tilt()
}

// Tilt maps the smoothed angles to card tilt.
func (f *TiltFilter) Tilt() TiltVector {
	return TiltVector{
		X: clamp(f.gamma*tiltGain, -MaxTilt, MaxTilt),
		Y: clamp((f.beta-tiltBetaBaseline)*tiltGain, -MaxTilt, MaxTilt),
	}
}

// OrientationSensor turns a MotionSource into smoothed tilt updates. Any
// failure of the source (permission denied, unsupported, disconnected) is
// logged and otherwise ignored: the callback simply stops firing.
type OrientationSensor struct {
	source MotionSource
	log    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewOrientationSensor wraps source. A nil source yields a sensor that never
// calls back.
func NewOrientationSensor(source MotionSource, log *slog.Logger) *OrientationSensor {
	if log == nil {
		log = slog.Default()
	}
	return &OrientationSensor{source: source, log: log}
}

// Subscribe starts delivering tilt updates to fn on a background goroutine.
// It returns immediately; any permission prompt runs asynchronously. Calling
// Subscribe while already subscribed has no effect.
func (s *OrientationSensor) Subscribe(fn func(TiltVector)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.source == nil {
		if s.source == nil {
			s.log.Debug("orientation: no source", "err", ErrOrientationUnavailable)
		}
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, fn, s.done)
}

func (s *OrientationSensor) run(ctx context.Context, fn func(TiltVector), done chan struct{}) {
	defer close(done)

	if pr, ok := s.source.(PermissionRequester); ok {
		granted, err := pr.RequestPermission(ctx)
		if err != nil || !granted {
			s.log.Debug("orientation: permission not granted", "err", err, "cause", ErrOrientationUnavailable)
			return
		}
	}

	samples, err := s.source.Samples(ctx)
	if err != nil {
		s.log.Debug("orientation: source failed", "err", err, "cause", ErrOrientationUnavailable)
		return
	}

	var filter TiltFilter
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-samples:
			if !ok {
				s.log.Debug("orientation: source closed")
				return
			}
			tilt := filter.Push(sample.Beta, sample.Gamma)
			if ctx.Err() != nil {
				return
			}
			fn(tilt)
		}
	}
}

// Unsubscribe stops delivery and waits for the background goroutine to exit,
// so fn is never called after Unsubscribe returns. It is idempotent.
func (s *OrientationSensor) Unsubscribe() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
