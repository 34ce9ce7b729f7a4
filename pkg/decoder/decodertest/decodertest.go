// Package decodertest provides decoders for tests of code that consumes
// decoder.Decoder.
package decodertest

import (
	"fmt"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"dicomviewer/pkg/decoder"
)

// Mock is a testify mock implementing decoder.Decoder
type Mock struct {
	mock.Mock
}

// Decode records the call and returns the configured values
func (m *Mock) Decode(data []byte) (*decoder.Raster, error) {
	args := m.Called(data)
	raster, _ := args.Get(0).(*decoder.Raster)
	return raster, args.Error(1)
}

// Payload builds file bytes understood by Fake: a width x height gradient
// raster with the given spacing tag ("" means no tag).
func Payload(width, height int, spacing string) []byte {
	return []byte(fmt.Sprintf("%d|%d|%s", width, height, spacing))
}

// Corrupt returns bytes that Fake refuses to decode
func Corrupt() []byte {
	return []byte("corrupt")
}

// Fake decodes Payload bytes without touching any real file format.
// It is safe for concurrent use and counts its calls.
type Fake struct {
	calls atomic.Int64
}

// Calls returns how many times Decode ran
func (f *Fake) Calls() int {
	return int(f.calls.Load())
}

// Decode parses a Payload
func (f *Fake) Decode(data []byte) (*decoder.Raster, error) {
	f.calls.Add(1)

	var width, height int
	var rest string
	n, _ := fmt.Sscanf(string(data), "%d|%d|%s", &width, &height, &rest)
	if n < 2 {
		return nil, fmt.Errorf("fake decoder: unrecognized payload %q", data)
	}

	raster := &decoder.Raster{
		Width:   width,
		Height:  height,
		Samples: make([]float64, max(width*height, 0)),
	}
	for i := range raster.Samples {
		raster.Samples[i] = float64(i)
	}
	if n == 3 {
		raster.PixelSpacing = rest
		raster.HasPixelSpacing = true
	}
	return raster, nil
}
