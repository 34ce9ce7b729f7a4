// Package visualization renders frames for display: the contrast filter, the
// zoomed and panned viewport composition, the caliper overlay and JPEG
// encoding of the result.
package visualization

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/viewport"
)

// Background is the colour outside the image
var Background = color.RGBA{A: 255}

// Contrast applies a CSS-style contrast filter: every channel is moved
// away from mid-gray by percent/100. 100 leaves the image unchanged and 0
// yields flat gray.
func Contrast(img image.Image, percent int) *image.NRGBA {
	if percent == 100 {
		return imaging.Clone(img)
	}
	k := float64(percent) / 100
	var lut [256]uint8
	for i := range lut {
		v := (float64(i)-127.5)*k + 127.5
		lut[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

// Viewport composes frame into a width x height canvas the way it appears
// on screen under state: fitted, zoomed about its centre, panned, and with
// the contrast filter applied to the image only.
func Viewport(frame *models.Frame, state viewport.State, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if frame == nil || frame.Image == nil {
		return canvas
	}

	box := viewport.Display(viewport.Box{Width: float64(width), Height: float64(height)}, frame, state)
	if box.Empty() {
		return canvas
	}
	dr := image.Rect(
		int(math.Round(box.Left)),
		int(math.Round(box.Top)),
		int(math.Round(box.Left+box.Width)),
		int(math.Round(box.Top+box.Height)),
	)
	if dr.Empty() {
		return canvas
	}

	src := Contrast(frame.Image, state.Contrast)
	draw.ApproxBiLinear.Scale(canvas, dr, src, src.Bounds(), draw.Over, nil)
	return canvas
}

// EncodeJPEG writes img as JPEG with the given quality
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// DataURL returns img as a base64 JPEG data URL, the transferable form of a
// rendered frame
func DataURL(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
