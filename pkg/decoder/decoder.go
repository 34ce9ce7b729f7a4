// Package decoder adapts file formats into raw rasters with calibration.
//
// The engine treats a Decoder as authoritative: it does not reinterpret the
// samples beyond rasterizing them for display, and it reads the pixel spacing
// exactly as the (0028,0030) tag string, "row\col".
package decoder

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Raster is a decoded single-channel image plus its calibration metadata
type Raster struct {
	// Width and Height are the raster dimensions in pixels
	Width  int
	Height int

	// Samples holds Width*Height values in row-major order
	Samples []float64

	// PixelSpacing is the raw (0028,0030) value, "row\col"
	PixelSpacing string

	// HasPixelSpacing is false when the tag is absent
	HasPixelSpacing bool

	// Inverted is set for MONOCHROME1 data, where the lowest sample is white
	Inverted bool
}

// Decoder turns raw file bytes into a Raster
type Decoder interface {
	Decode(data []byte) (*Raster, error)
}

// DICOMDecoder decodes DICOM Part 10 files
type DICOMDecoder struct{}

// Decode parses a DICOM dataset and returns its first frame
func (DICOMDecoder) Decode(data []byte) (*Raster, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("parsing dicom dataset: %w", err)
	}

	pixelElem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("dataset has no pixel data: %w", err)
	}
	info, ok := pixelElem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected pixel data value type %v", pixelElem.Value.ValueType())
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("pixel data contains no frames")
	}

	img, err := info.Frames[0].GetImage()
	if err != nil {
		return nil, fmt.Errorf("reading first frame: %w", err)
	}

	raster := FromImage(img)
	if spacingElem, err := ds.FindElementByTag(tag.PixelSpacing); err == nil {
		if values, ok := spacingElem.Value.GetValue().([]string); ok && len(values) > 0 {
			raster.PixelSpacing = strings.Join(values, `\`)
			raster.HasPixelSpacing = true
		}
	}
	if piElem, err := ds.FindElementByTag(tag.PhotometricInterpretation); err == nil {
		if values, ok := piElem.Value.GetValue().([]string); ok && len(values) > 0 {
			raster.Inverted = strings.TrimSpace(values[0]) == "MONOCHROME1"
		}
	}
	return raster, nil
}

// ImageDecoder decodes ordinary raster formats (PNG, JPEG, GIF, BMP, TIFF).
// Such files never carry pixel spacing.
type ImageDecoder struct{}

// Decode decodes the image and converts it to gray samples
func (ImageDecoder) Decode(data []byte) (*Raster, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

// AutoDecoder dispatches on the DICOM preamble
type AutoDecoder struct {
	DICOM Decoder
	Image Decoder
}

// NewAutoDecoder returns a decoder for both DICOM and plain image files
func NewAutoDecoder() *AutoDecoder {
	return &AutoDecoder{DICOM: DICOMDecoder{}, Image: ImageDecoder{}}
}

// Decode picks the DICOM decoder for files with a DICM magic and the image
// decoder otherwise
func (d *AutoDecoder) Decode(data []byte) (*Raster, error) {
	if IsDICOM(data) {
		return d.DICOM.Decode(data)
	}
	return d.Image.Decode(data)
}

// IsDICOM checks for the "DICM" magic after the 128 byte preamble
func IsDICOM(data []byte) bool {
	if len(data) < 132 {
		return false
	}
	return string(data[128:132]) == "DICM"
}

// FromImage converts an image into a single-channel raster without spacing.
// 16-bit gray images keep their full sample range.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	samples := make([]float64, width*height)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				samples[y*width+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				samples[y*width+x] = float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				samples[y*width+x] = float64(g.Y)
			}
		}
	}

	return &Raster{Width: width, Height: height, Samples: samples}
}
