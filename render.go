package arcard

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Card layout.
const (
	cardWidthRatio = 0.85   // of the screen width
	cardMaxWidth   = 500.0  // pixels
	cardAspect     = 1.5    // width / height
	perspective    = 1200.0 // viewer distance in pixels
	cardSegments   = 8      // mesh subdivisions per side
)

var (
	backdropColor = color.RGBA{0x10, 0x10, 0x14, 0xff}
	hintBackColor = color.RGBA{0, 0, 0, 0x99}
)

// CardSize returns the unscaled card size for a screen of the given width.
func CardSize(screenW float64) (w, h float64) {
	w = math.Min(screenW*cardWidthRatio, cardMaxWidth)
	return w, w / cardAspect
}

// projectPoint maps a point (lx, ly) in card-local pixels, origin at the card
// center, to screen coordinates. Rotations apply in Y, X, Z order, then
// scale, translation from the screen center and a perspective divide.
func projectPoint(rt RenderTransform, lx, ly, sw, sh float64) (x, y float64) {
	ry, rx, rz := degToRad(rt.RotateY), degToRad(rt.RotateX), degToRad(rt.RotateZ)

	// rotateY
	x = lx * math.Cos(ry)
	z := -lx * math.Sin(ry)
	y = ly
	// rotateX
	y, z = y*math.Cos(rx)-z*math.Sin(rx), y*math.Sin(rx)+z*math.Cos(rx)
	// rotateZ
	x, y = x*math.Cos(rz)-y*math.Sin(rz), x*math.Sin(rz)+y*math.Cos(rz)

	x, y, z = x*rt.Scale+rt.TranslateX, y*rt.Scale+rt.TranslateY, z*rt.Scale

	f := perspective // point at or behind the eye
	if d := perspective - z; d > 1 {
		f = perspective / d
	}
	return sw/2 + x*f, sh/2 + y*f
}

// projectCard returns the screen positions of the card corners (top-left,
// top-right, bottom-right, bottom-left) and whether the front face is toward
// the viewer.
func projectCard(rt RenderTransform, sw, sh float64) (corners [4]Vec2, front bool) {
	cw, ch := CardSize(sw)
	hw, hh := cw/2, ch/2
	local := [4]Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, p := range local {
		corners[i].X, corners[i].Y = projectPoint(rt, p.X, p.Y, sw, sh)
	}
	return corners, signedArea(corners) >= 0
}

// signedArea is positive when the quad winds clockwise on screen (y down),
// which is how the front face appears when it faces the viewer.
func signedArea(q [4]Vec2) float64 {
	var a float64
	for i := range q {
		j := (i + 1) % len(q)
		a += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return a / 2
}

// Renderer draws the camera backdrop, the card and the overlays.
type Renderer struct {
	backdrop  *ebiten.Image
	white     *ebiten.Image
	overlay   *ebiten.Image
	verts     []ebiten.Vertex
	inds      []uint16
	fps       *fpsWidget
	lastFrame image.Image
}

// NewRenderer creates a renderer. Images are allocated on first draw.
func NewRenderer(showFPS bool) *Renderer {
	r := &Renderer{}
	if showFPS {
		r.fps = newFPSWidget()
	}
	return r
}

// Update advances time-based overlays by dt seconds.
func (r *Renderer) Update(dt float64) {
	if r.fps != nil {
		r.fps.update(dt)
	}
}

// Draw renders one frame of v onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, v *Viewer) {
	screen.Fill(backdropColor)
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	switch v.State() {
	case SessionActive:
		r.drawBackdrop(screen, v.Frame())
		r.drawCard(screen, v.Transform(), v.Content(), sw, sh)
		r.drawHints(screen, v.Hints(), sw, sh)
	case SessionError:
		msg := "Camera unavailable"
		if err := v.Err(); err != nil {
			msg = err.Error()
		}
		r.drawMessage(screen, msg+"\n\nPress Enter to retry or Esc to close.", 1, sw, sh/2)
	case SessionIdle, SessionRequesting:
		r.drawMessage(screen, "Requesting camera access...", 1, sw, sh/2)
	}

	if r.fps != nil {
		r.fps.draw(screen)
	}
}

// drawBackdrop draws the camera frame scaled to cover the screen.
func (r *Renderer) drawBackdrop(screen *ebiten.Image, frame image.Image) {
	if frame == nil {
		return
	}
	fb := frame.Bounds()
	if fb.Empty() {
		return
	}
	if r.backdrop == nil || r.backdrop.Bounds().Size() != fb.Size() {
		if r.backdrop != nil {
			r.backdrop.Deallocate()
		}
		r.backdrop = ebiten.NewImage(fb.Dx(), fb.Dy())
		r.lastFrame = nil
	}
	if rgba, ok := frame.(*image.RGBA); ok && rgba.Stride == 4*fb.Dx() {
		r.backdrop.WritePixels(rgba.Pix)
	} else if frame != r.lastFrame {
		r.backdrop.Deallocate()
		r.backdrop = ebiten.NewImageFromImage(frame)
	}
	r.lastFrame = frame

	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	fw, fh := float64(fb.Dx()), float64(fb.Dy())
	s := math.Max(sw/fw, sh/fh)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(s, s)
	op.GeoM.Translate((sw-fw*s)/2, (sh-fh*s)/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(r.backdrop, &op)
}

// drawCard draws whichever face points at the viewer. The back face is
// mirrored horizontally so it reads correctly once the card is turned over.
func (r *Renderer) drawCard(screen *ebiten.Image, rt RenderTransform, c Content, sw, sh float64) {
	_, front := projectCard(rt, sw, sh)
	img := c.Front
	if !front {
		img = c.Back
	}
	if img == nil {
		if r.white == nil {
			r.white = ebiten.NewImage(1, 1)
			r.white.Fill(color.White)
		}
		img = r.white
	}
	r.verts, r.inds = cardMesh(r.verts[:0], r.inds[:0], rt, sw, sh, img.Bounds(), !front)

	var op ebiten.DrawTrianglesOptions
	op.Filter = ebiten.FilterLinear
	op.AntiAlias = true
	screen.DrawTriangles(r.verts, r.inds, img, &op)
}

// cardMesh builds a subdivided quad for the card so the perspective divide
// stays close to correct across the face.
func cardMesh(verts []ebiten.Vertex, inds []uint16, rt RenderTransform, sw, sh float64, src image.Rectangle, mirror bool) ([]ebiten.Vertex, []uint16) {
	cw, ch := CardSize(sw)
	n := cardSegments
	for j := 0; j <= n; j++ {
		v := float64(j) / float64(n)
		for i := 0; i <= n; i++ {
			u := float64(i) / float64(n)
			x, y := projectPoint(rt, (u-0.5)*cw, (v-0.5)*ch, sw, sh)
			su := u
			if mirror {
				su = 1 - u
			}
			verts = append(verts, ebiten.Vertex{
				DstX:   float32(x),
				DstY:   float32(y),
				SrcX:   float32(float64(src.Min.X) + su*float64(src.Dx())),
				SrcY:   float32(float64(src.Min.Y) + v*float64(src.Dy())),
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			})
		}
	}
	row := uint16(n + 1)
	for j := uint16(0); j < uint16(n); j++ {
		for i := uint16(0); i < uint16(n); i++ {
			a := j*row + i
			inds = append(inds, a, a+1, a+row, a+1, a+row+1, a+row)
		}
	}
	return verts, inds
}

func (r *Renderer) drawHints(screen *ebiten.Image, h HintState, sw, sh float64) {
	if h.Instructions > 0 {
		r.drawMessage(screen, "Drag to move the card\nPinch to zoom, twist to rotate", h.Instructions, sw, sh-80)
	}
	if h.FlipHint > 0 {
		r.drawMessage(screen, "Double-tap to flip", h.FlipHint, sw, 60)
	}
}

// drawMessage draws centered debug-font text on a translucent panel.
func (r *Renderer) drawMessage(screen *ebiten.Image, msg string, alpha, sw, cy float64) {
	const (
		charW, lineH = 6, 16
		pad          = 10
	)
	lines, cols := 1, 0
	cur := 0
	for _, ch := range msg {
		if ch == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		cols = max(cols, cur)
	}
	w, h := cols*charW+2*pad, lines*lineH+2*pad
	if r.overlay == nil || r.overlay.Bounds().Dx() < w || r.overlay.Bounds().Dy() < h {
		if r.overlay != nil {
			r.overlay.Deallocate()
		}
		r.overlay = ebiten.NewImage(max(w, 256), max(h, 64))
	}
	r.overlay.Clear()
	panel := r.overlay.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	panel.Fill(hintBackColor)
	ebitenutil.DebugPrintAt(panel, msg, pad, pad)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate((sw-float64(w))/2, cy-float64(h)/2)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(panel, &op)
}
