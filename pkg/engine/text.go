package engine

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// lineHeight is the pixel advance between text rows. Face7x13 needs a
// little more than one tile.
const lineHeight = 13

// drawTextPanel renders the text panel at the bottom of the screen:
// the selection list while one is pending, otherwise the text lines.
// The panel image is re-rendered only when the content changed.
func (e *Engine) drawTextPanel(screen *ebiten.Image) {
	if e.textDirty || e.textPanel == nil {
		e.renderTextPanel()
		e.textDirty = false
	}
	if e.textPanel == nil {
		return
	}

	op := &ebiten.DrawImageOptions{}
	panelHeight := e.textPanel.Bounds().Dy()
	op.GeoM.Translate(0, float64(e.cfg.WindowHeight*TileSize-panelHeight))
	screen.DrawImage(e.textPanel, op)
}

// renderTextPanel rasterises the current selections, or the current
// lines when no selections are pending, into the cached panel image.
func (e *Engine) renderTextPanel() {
	rows := e.cfg.TextLines
	if len(e.selections) > rows {
		rows = len(e.selections)
	}

	width := e.cfg.WindowWidth * TileSize
	height := rows*lineHeight + 2
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	drawer := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}

	if len(e.selections) > 0 {
		for i, sel := range e.selections {
			prefix := "  "
			if i == e.cursor {
				prefix = "> "
			}
			drawer.Dot = fixed.P(TileSize, (i+1)*lineHeight)
			drawer.DrawString(prefix + sel.Text)
		}
	} else {
		for i, line := range e.textLines {
			drawer.Dot = fixed.P(TileSize, (i+1)*lineHeight)
			drawer.DrawString(line)
		}
	}

	e.textPanel = ebiten.NewImageFromImage(rgba)
}
