package grandtree

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is re-rendered, in seconds.
const fpsRefresh = 0.5

// FPSOverlay displays the current FPS and TPS in a screen corner.
type FPSOverlay struct {
	img   *ebiten.Image
	since float64
	text  string
}

// NewFPSOverlay creates an overlay. The image is allocated on first draw.
func NewFPSOverlay() *FPSOverlay {
	return &FPSOverlay{since: fpsRefresh}
}

// Update advances the refresh timer.
func (o *FPSOverlay) Update(dt float64) {
	o.since += dt
	if o.since < fpsRefresh {
		return
	}
	o.since = 0
	o.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if o.img != nil {
		o.render()
	}
}

func (o *FPSOverlay) render() {
	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

// Draw draws the overlay at the top-right corner of screen.
func (o *FPSOverlay) Draw(screen *ebiten.Image) {
	if o.img == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		o.img = ebiten.NewImage(100, 32)
		o.render()
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(screen.Bounds().Dx()-o.img.Bounds().Dx()-8), 8)
	screen.DrawImage(o.img, &op)
}
