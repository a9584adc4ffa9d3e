package arcard

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefreshSeconds throttles how often the counter text is redrawn.
const fpsRefreshSeconds = 0.5

// fpsWidget shows the current FPS and TPS in the top-left corner. The text is
// rendered into its own image and refreshed every half second.
type fpsWidget struct {
	img   *ebiten.Image
	since float64
	dirty bool
}

func newFPSWidget() *fpsWidget {
	return &fpsWidget{dirty: true}
}

func (w *fpsWidget) update(dt float64) {
	w.since += dt
	if w.since < fpsRefreshSeconds {
		return
	}
	w.since = 0
	w.dirty = true
}

func (w *fpsWidget) draw(screen *ebiten.Image) {
	if w.img == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		w.img = ebiten.NewImage(100, 32)
	}
	if w.dirty {
		w.dirty = false
		w.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(w.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(w.img, nil)
}
