package visualization

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/viewport"
)

// Overlay colours
var (
	AnchorColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	LineColor   = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	LabelColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const anchorRadius = 3

var anchorNames = []string{"A", "B"}

// Overlay draws caliper anchors onto dst, lettered A and B. Anchor coordinates are relative to
// box, the image's on-screen box, so they follow the image when it is panned.
// When label is non-nil the anchors are joined by a line and annotated at
// their midpoint.
func Overlay(dst *image.RGBA, box viewport.Box, anchors []models.Anchor, label *measure.Label) {
	if label != nil && len(anchors) == 2 {
		a, b := anchors[0], anchors[1]
		drawLine(dst, box.Left+a.ScreenX, box.Top+a.ScreenY, box.Left+b.ScreenX, box.Top+b.ScreenY, LineColor)
	}
	for i, a := range anchors {
		drawDot(dst, box.Left+a.ScreenX, box.Top+a.ScreenY, AnchorColor)
		if i < len(anchorNames) {
			x := int(math.Round(box.Left+a.ScreenX)) + anchorRadius + 2
			y := int(math.Round(box.Top+a.ScreenY)) - anchorRadius - 2
			drawText(dst, x, y, anchorNames[i], AnchorColor)
		}
	}
	if label != nil {
		drawText(dst, int(math.Round(box.Left+label.X))+6, int(math.Round(box.Top+label.Y))-6, label.Text, LabelColor)
	}
}

func drawDot(img *image.RGBA, cx, cy float64, c color.RGBA) {
	x0, y0 := int(math.Round(cx)), int(math.Round(cy))
	for dy := -anchorRadius; dy <= anchorRadius; dy++ {
		for dx := -anchorRadius; dx <= anchorRadius; dx++ {
			if dx*dx+dy*dy <= anchorRadius*anchorRadius {
				setPixel(img, x0+dx, y0+dy, c)
			}
		}
	}
}

// drawLine samples the segment at one-pixel steps
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x2-x1), math.Abs(y2-y1))))
	if steps == 0 {
		setPixel(img, int(math.Round(x1)), int(math.Round(y1)), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(img, int(math.Round(x1+(x2-x1)*t)), int(math.Round(y1+(y2-y1)*t)), c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawText renders text onto an image at the specified baseline position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
