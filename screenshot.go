package arcard

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the next drawn frame. The Game
// writes it as a PNG into its screenshot directory.
func (v *Viewer) Screenshot(label string) {
	v.screenshots = append(v.screenshots, label)
}

// takeScreenshots returns and clears the queued labels.
func (v *Viewer) takeScreenshots() []string {
	labels := v.screenshots
	v.screenshots = nil
	return labels
}

// flushScreenshots captures screen once and writes one PNG per label.
func flushScreenshots(screen *ebiten.Image, labels []string, dir string, log *slog.Logger) {
	if len(labels) == 0 {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("screenshot: mkdir", "dir", dir, "err", err)
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			log.Warn("screenshot: write", "err", err)
			continue
		}
		log.Info("screenshot: saved", "path", path)
	}
}

// unpremultiply converts ReadPixels output, which is premultiplied, into a
// straight-alpha image that PNG encoders expect.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := min(len(pixels), len(img.Pix)) &^ 3
	copy(img.Pix, pixels[:n])
	for px := img.Pix[:n]; len(px) >= 4; px = px[4:] {
		a := int(px[3])
		if a == 0 || a == 0xff {
			continue
		}
		for c := range 3 {
			px[c] = uint8(min(int(px[c])*0xff/a, 0xff))
		}
	}
	return img
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("screenshot: %w", cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel keeps ASCII letters, digits, dashes and dots so a label is
// safe as a file name. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
