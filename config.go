package arcard

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of a viewer and its demo window. Start
// from DefaultConfig; LoadConfig overlays a file on top of it.
type Config struct {
	Camera  CameraConfig  `yaml:"camera"`
	Motion  MotionConfig  `yaml:"motion"`
	Gesture GestureConfig `yaml:"gesture"`
	Flip    FlipConfig    `yaml:"flip"`
	Springs SpringsConfig `yaml:"springs"`
	Hints   HintsConfig   `yaml:"hints"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
}

type CameraConfig struct {
	Source     string `yaml:"source"`               // "pattern" or "image"
	ImagePath  string `yaml:"image_path,omitempty"` // required for "image"
	FacingMode string `yaml:"facing_mode"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FPS        int    `yaml:"fps"`
}

// Constraints converts the camera section to stream constraints.
func (c CameraConfig) Constraints() Constraints {
	return Constraints{Facing: FacingMode(c.FacingMode), Width: c.Width, Height: c.Height, FPS: c.FPS}
}

type MotionConfig struct {
	Source string      `yaml:"source"` // "none", "mock", "mqtt" or "relay"
	MQTT   MQTTConfig  `yaml:"mqtt"`
	Relay  RelayConfig `yaml:"relay"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

type RelayConfig struct {
	Addr string `yaml:"addr"`
}

type GestureConfig struct {
	// DefaultScale is the scale a new viewer starts at and Reset returns to.
	DefaultScale     float64 `yaml:"default_scale"`
	WheelStep        float64 `yaml:"wheel_step"`
	ZoomStep         float64 `yaml:"zoom_step"`
	TapSlop          float64 `yaml:"tap_slop"`
	MinPinchDistance float64 `yaml:"min_pinch_distance"`
}

type FlipConfig struct {
	DoubleTapWindowMS int `yaml:"double_tap_window_ms"`
}

// DoubleTapWindow returns the window as a duration.
func (f FlipConfig) DoubleTapWindow() time.Duration {
	return time.Duration(f.DoubleTapWindowMS) * time.Millisecond
}

// SpringConfig tunes one animated property.
type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness"`
}

// SpringsConfig groups the per-property springs. Tilt drives rotateX, Flip
// drives rotateY (flip and horizontal tilt), Rotation drives rotateZ.
type SpringsConfig struct {
	Position SpringConfig `yaml:"position"`
	Scale    SpringConfig `yaml:"scale"`
	Tilt     SpringConfig `yaml:"tilt"`
	Flip     SpringConfig `yaml:"flip"`
	Rotation SpringConfig `yaml:"rotation"`
}

type HintsConfig struct {
	InstructionsMS int `yaml:"instructions_ms"`
	FlipHintMS     int `yaml:"flip_hint_ms"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			Source:     "pattern",
			FacingMode: string(FacingEnvironment),
			Width:      1920,
			Height:     1080,
			FPS:        30,
		},
		Motion: MotionConfig{
			Source: "none",
			MQTT: MQTTConfig{
				Broker:   "tcp://localhost:1883",
				Topic:    "inertial/pose",
				ClientID: "arcard-viewer",
			},
			Relay: RelayConfig{Addr: ":8088"},
		},
		Gesture: GestureConfig{
			DefaultScale:     0.7,
			WheelStep:        0.05,
			ZoomStep:         0.1,
			TapSlop:          defaultTapSlop,
			MinPinchDistance: defaultMinPinchDistance,
		},
		Flip: FlipConfig{DoubleTapWindowMS: int(DefaultDoubleTapWindow / time.Millisecond)},
		Springs: SpringsConfig{
			Position: SpringConfig{Stiffness: 300},
			Scale:    SpringConfig{Stiffness: 300},
			Tilt:     SpringConfig{Stiffness: 120},
			Flip:     SpringConfig{Stiffness: 80},
			Rotation: SpringConfig{Stiffness: 200},
		},
		Hints: HintsConfig{InstructionsMS: 4000, FlipHintMS: 6000},
		Window: WindowConfig{
			Title:  "arcard",
			Width:  1280,
			Height: 720,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads path and decodes it over DefaultConfig. Unknown keys are
// rejected so typos surface instead of silently keeping a default.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements.
func (c Config) Validate() error {
	var errs []error

	switch c.Camera.Source {
	case "pattern":
	case "image":
		if c.Camera.ImagePath == "" {
			errs = append(errs, errors.New("camera.image_path is required when camera.source is image"))
		}
	default:
		errs = append(errs, fmt.Errorf("camera.source: unknown source %q", c.Camera.Source))
	}
	switch FacingMode(c.Camera.FacingMode) {
	case FacingEnvironment, FacingUser:
	default:
		errs = append(errs, fmt.Errorf("camera.facing_mode: must be environment or user, got %q", c.Camera.FacingMode))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera: width and height must be positive, got %dx%d", c.Camera.Width, c.Camera.Height))
	}

	switch c.Motion.Source {
	case "none", "mock":
	case "mqtt":
		if c.Motion.MQTT.Broker == "" || c.Motion.MQTT.Topic == "" {
			errs = append(errs, errors.New("motion.mqtt: broker and topic are required"))
		}
	case "relay":
		if c.Motion.Relay.Addr == "" {
			errs = append(errs, errors.New("motion.relay.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("motion.source: unknown source %q", c.Motion.Source))
	}

	g := c.Gesture
	if g.DefaultScale < MinScale || g.DefaultScale > MaxScale {
		errs = append(errs, fmt.Errorf("gesture.default_scale: must be within [%g, %g], got %g", MinScale, MaxScale, g.DefaultScale))
	}
	if g.WheelStep <= 0 || g.ZoomStep <= 0 {
		errs = append(errs, errors.New("gesture: wheel_step and zoom_step must be positive"))
	}
	if g.TapSlop < 0 || g.MinPinchDistance < 0 {
		errs = append(errs, errors.New("gesture: tap_slop and min_pinch_distance must not be negative"))
	}
	if c.Flip.DoubleTapWindowMS <= 0 {
		errs = append(errs, fmt.Errorf("flip.double_tap_window_ms: must be positive, got %d", c.Flip.DoubleTapWindowMS))
	}

	for name, s := range map[string]SpringConfig{
		"position": c.Springs.Position,
		"scale":    c.Springs.Scale,
		"tilt":     c.Springs.Tilt,
		"flip":     c.Springs.Flip,
		"rotation": c.Springs.Rotation,
	} {
		if s.Stiffness < 0 {
			errs = append(errs, fmt.Errorf("springs.%s.stiffness: must not be negative", name))
		}
	}

	if c.Hints.InstructionsMS < 0 || c.Hints.FlipHintMS < 0 {
		errs = append(errs, errors.New("hints: durations must not be negative"))
	}
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewFrameSource builds the camera source selected by c.
func NewFrameSource(c CameraConfig) FrameSource {
	if c.Source == "image" {
		return ImageSource{Path: c.ImagePath}
	}
	return PatternSource{}
}

// NewMotionSource builds the motion source selected by m. It returns nil for
// "none", which leaves tilt at zero.
func NewMotionSource(m MotionConfig, log *slog.Logger) MotionSource {
	switch m.Source {
	case "mock":
		return MockMotionSource{}
	case "mqtt":
		return NewMQTTMotionSource(m.MQTT, log)
	case "relay":
		return NewRelayMotionSource(m.Relay.Addr, log)
	default:
		return nil
	}
}
