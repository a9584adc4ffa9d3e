package arcard

import (
	"context"
	"math"
	"time"
)

// MockMotionSource generates smoothly changing orientation samples, useful
// on desktops that have no motion sensor.
type MockMotionSource struct {
	// Interval between samples. Zero means 60 Hz.
	Interval time.Duration
}

// Samples emits a sinusoidal sweep around the natural viewing angle.
func (m MockMotionSource) Samples(ctx context.Context) (<-chan MotionSample, error) {
	interval := m.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	out := make(chan MotionSample, 1)
	start := time.Now()
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				elapsed := t.Sub(start).Seconds()
				sample := MotionSample{
					Beta:  tiltBetaBaseline + 20*math.Cos(elapsed*0.7),
					Gamma: 25 * math.Sin(elapsed),
					Time:  t,
				}
				select {
				case out <- sample:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
