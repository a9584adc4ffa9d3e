package arcard

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window and the session that Run opens.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool

	Content   Content
	Callbacks Callbacks

	// ScreenshotDir receives captures queued with Viewer.Screenshot.
	// Empty means "screenshots".
	ScreenshotDir string
	// ExitWhenScriptDone ends the run once an attached script finishes.
	ExitWhenScriptDone bool
}

// Game adapts a Viewer to ebiten.Game: it polls input, maps keyboard
// shortcuts to commands, steps the viewer and renders it.
type Game struct {
	viewer   *Viewer
	renderer *Renderer
	input    *inputPoller
	cfg      RunConfig

	screenW, screenH int
	focused          bool
}

// NewGame wraps v. The viewer must already be open or be opened by the
// caller before the first Update.
func NewGame(v *Viewer, cfg RunConfig) *Game {
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	g := &Game{
		viewer:   v,
		renderer: NewRenderer(cfg.ShowFPS),
		cfg:      cfg,
		screenW:  cfg.Width,
		screenH:  cfg.Height,
		focused:  true,
	}
	g.input = newInputPoller(v.HandlePointer)
	return g
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	v := g.viewer
	if v.State() == SessionClosed {
		return ebiten.Termination
	}
	now := time.Now()

	focused := ebiten.IsFocused()
	if g.focused && !focused {
		g.input.cancelAll(now)
	}
	g.focused = focused

	if !v.Injecting() {
		g.input.poll(now, v.HandleWheel)
	}
	g.handleKeys()

	dt := 1 / float64(ebiten.TPS())
	v.Update(dt)
	g.renderer.Update(dt)

	if g.cfg.ExitWhenScriptDone && v.script != nil && v.script.Done() && len(v.screenshots) == 0 {
		v.Close()
	}
	if v.State() == SessionClosed {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) handleKeys() {
	v := g.viewer
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.Close()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		v.Flip()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		v.ZoomIn()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		v.ZoomOut()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		v.Retry()
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.viewer)
	flushScreenshots(screen, g.viewer.takeScreenshots(), g.cfg.ScreenshotDir, g.viewer.log)
}

// Layout implements ebiten.Game. The logical screen follows the window so
// the card layout adapts to resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens v if it is idle, runs the ebiten loop until the window closes
// or the viewer is closed, and always closes v before returning.
func Run(v *Viewer, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = v.cfg.Window.Title
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = v.cfg.Window.Width, v.cfg.Window.Height
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if v.State() == SessionIdle {
		if err := v.Open(cfg.Content, cfg.Callbacks); err != nil {
			return err
		}
	}
	defer v.Close()

	err := ebiten.RunGame(NewGame(v, cfg))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
