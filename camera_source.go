package arcard

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // still-image backdrops
	_ "image/png"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
)

// videoTrack is the single track of the synthetic sources.
type videoTrack struct {
	ended atomic.Bool
}

func (t *videoTrack) Kind() string { return "video" }

func (t *videoTrack) State() TrackState {
	if t.ended.Load() {
		return TrackEnded
	}
	return TrackLive
}

func (t *videoTrack) Stop() { t.ended.Store(true) }

// PatternSource is a FrameSource that synthesizes a slowly moving gradient.
// It stands in for a real camera on desktops and in automated runs.
type PatternSource struct {
	// Downscale divides the requested resolution to keep frame synthesis
	// cheap. Zero means 4.
	Downscale int
}

// Open returns a stream of synthetic frames. It never asks for permission.
func (p PatternSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	div := p.Downscale
	if div <= 0 {
		div = 4
	}
	w, h := c.Width/div, c.Height/div
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pattern source: invalid size %dx%d: %w", c.Width, c.Height, ErrDeviceUnavailable)
	}
	fps := c.FPS
	if fps <= 0 {
		fps = 30
	}
	return &patternStream{
		track:    &videoTrack{},
		frame:    image.NewRGBA(image.Rect(0, 0, w, h)),
		interval: time.Second / time.Duration(fps),
		start:    time.Now(),
	}, nil
}

type patternStream struct {
	track    *videoTrack
	interval time.Duration
	start    time.Time

	mu    sync.Mutex
	frame *image.RGBA
	last  time.Time
}

func (s *patternStream) Tracks() []Track { return []Track{s.track} }

func (s *patternStream) Frame() image.Image {
	if s.track.State() == TrackEnded {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if now.Sub(s.last) >= s.interval {
		paintPattern(s.frame, now.Sub(s.start).Seconds())
		s.last = now
	}
	return s.frame
}

// paintPattern fills img with a diagonal gradient whose hue drifts over time.
func paintPattern(img *image.RGBA, t float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	shift := 0.5 + 0.5*math.Sin(t*0.4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		fy := float64(y) / h
		for x := b.Min.X; x < b.Max.X; x++ {
			fx := float64(x) / w
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(40 + 60*fx*shift),
				G: uint8(50 + 70*fy),
				B: uint8(70 + 80*(1-fx)*(1-shift)),
				A: 255,
			})
		}
	}
}

// ImageSource is a FrameSource that serves a still image as the camera feed,
// scaled to cover the requested resolution.
type ImageSource struct {
	Path string
}

// Open decodes the image file. A missing or unreadable file is reported as
// ErrDeviceUnavailable.
func (s ImageSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("image source: %w: %w", ErrDeviceUnavailable, err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("image source: decode %s: %w: %w", s.Path, ErrDeviceUnavailable, err)
	}
	return &stillStream{track: &videoTrack{}, frame: coverScale(src, c.Width, c.Height)}, nil
}

type stillStream struct {
	track *videoTrack
	frame image.Image
}

func (s *stillStream) Tracks() []Track { return []Track{s.track} }

func (s *stillStream) Frame() image.Image {
	if s.track.State() == TrackEnded {
		return nil
	}
	return s.frame
}

// coverScale scales src so it fully covers a w x h box and crops the excess
// evenly from both sides. Non-positive sizes return src unchanged.
func coverScale(src image.Image, w, h int) image.Image {
	sb := src.Bounds()
	if w <= 0 || h <= 0 || sb.Dx() == 0 || sb.Dy() == 0 {
		return src
	}
	scale := math.Max(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	cw := int(math.Round(float64(w) / scale))
	ch := int(math.Round(float64(h) / scale))
	ox := sb.Min.X + (sb.Dx()-cw)/2
	oy := sb.Min.Y + (sb.Dy()-ch)/2
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, image.Rect(ox, oy, ox+cw, oy+ch), draw.Src, nil)
	return dst
}
