package arcard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Gesture.DefaultScale != 0.7 {
		t.Errorf("default scale = %v, want 0.7", cfg.Gesture.DefaultScale)
	}
	if cfg.Flip.DoubleTapWindow() != 300*time.Millisecond {
		t.Errorf("double tap window = %v", cfg.Flip.DoubleTapWindow())
	}
	c := cfg.Camera.Constraints()
	if c.Facing != FacingEnvironment || c.Width != 1920 || c.Height != 1080 {
		t.Errorf("constraints = %+v", c)
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
motion:
  source: mqtt
  mqtt:
    broker: tcp://imu.local:1883
gesture:
  default_scale: 1.0
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Motion.Source != "mqtt" || cfg.Motion.MQTT.Broker != "tcp://imu.local:1883" {
		t.Errorf("motion = %+v", cfg.Motion)
	}
	// Untouched keys keep their defaults.
	if cfg.Motion.MQTT.Topic != "inertial/pose" {
		t.Errorf("topic = %q, want default", cfg.Motion.MQTT.Topic)
	}
	if cfg.Gesture.DefaultScale != 1.0 || cfg.Gesture.WheelStep != 0.05 {
		t.Errorf("gesture = %+v", cfg.Gesture)
	}
	if cfg.Springs.Flip.Stiffness != 80 {
		t.Errorf("flip stiffness = %v", cfg.Springs.Flip.Stiffness)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig([]byte("  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Error("empty document should yield the defaults")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "gesture:\n  default_scal: 1\n", "default_scal"},
		{"bad camera source", "camera:\n  source: webcam\n", "camera.source"},
		{"image without path", "camera:\n  source: image\n", "image_path"},
		{"bad facing", "camera:\n  facing_mode: sideways\n", "facing_mode"},
		{"bad motion source", "motion:\n  source: gps\n", "motion.source"},
		{"scale out of range", "gesture:\n  default_scale: 2.5\n", "default_scale"},
		{"zero window", "flip:\n  double_tap_window_ms: 0\n", "double_tap_window_ms"},
		{"negative stiffness", "springs:\n  tilt:\n    stiffness: -1\n", "springs.tilt"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"malformed", "gesture: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.Width = 0
	cfg.Gesture.WheelStep = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"camera", "wheel_step"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcard.yaml")
	if err := os.WriteFile(path, []byte("window:\n  title: postcard\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != "postcard" {
		t.Errorf("title = %q", cfg.Window.Title)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNewSources(t *testing.T) {
	if _, ok := NewFrameSource(CameraConfig{Source: "pattern"}).(PatternSource); !ok {
		t.Error("pattern source not selected")
	}
	if s, ok := NewFrameSource(CameraConfig{Source: "image", ImagePath: "a.png"}).(ImageSource); !ok || s.Path != "a.png" {
		t.Error("image source not selected")
	}

	m := DefaultConfig().Motion
	for source, check := range map[string]func(MotionSource) bool{
		"none":  func(s MotionSource) bool { return s == nil },
		"mock":  func(s MotionSource) bool { _, ok := s.(MockMotionSource); return ok },
		"mqtt":  func(s MotionSource) bool { _, ok := s.(*MQTTMotionSource); return ok },
		"relay": func(s MotionSource) bool { _, ok := s.(*RelayMotionSource); return ok },
	} {
		m.Source = source
		if !check(NewMotionSource(m, nil)) {
			t.Errorf("NewMotionSource(%q) returned the wrong type", source)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var b strings.Builder
	log, err := NewLogger(&b, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	if strings.Contains(b.String(), "hidden") || !strings.Contains(b.String(), "shown") {
		t.Errorf("output = %q", b.String())
	}
	if _, err := NewLogger(&b, "verbose"); err == nil {
		t.Error("invalid level accepted")
	}
}
