package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/tokencam/notify"
)

const (
	bannerHeight = 24
	bannerTop    = 8
)

var bannerColors = map[notify.Level]color.NRGBA{
	notify.Info:  {R: 0x2d, G: 0x4a, B: 0x6b, A: 220},
	notify.Warn:  {R: 0x7a, G: 0x5c, B: 0x1e, A: 220},
	notify.Error: {R: 0x7a, G: 0x2a, B: 0x2a, A: 220},
}

// drawBanners renders the active notification queue as stacked bars.
func drawBanners(screen *ebiten.Image, q *notify.Queue) {
	msgs := q.Active()
	y := bannerTop
	for _, m := range msgs {
		w := len(m.Text)*6 + 20
		x := (baseWidth - w) / 2
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), bannerHeight, bannerColors[m.Level], false)
		ebitenutil.DebugPrintAt(screen, m.Text, x+10, y+5)
		y += bannerHeight + 4
	}
}
