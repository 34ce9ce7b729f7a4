package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"dicomviewer/internal/models"
)

// SaveFrame saves a frame at native resolution as a JPEG image, with the
// contrast filter applied
func SaveFrame(frame *models.Frame, contrast, quality int, filename string) error {
	img := Contrast(frame.Image, contrast)
	return imaging.Save(img, filename, imaging.JPEGQuality(quality))
}

// SaveSeries saves every frame of a series into outputDir as
// frame_000.jpg, frame_001.jpg, ... in series order
func SaveSeries(s *models.Series, outputDir string, contrast, quality int) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, s.Len())
	for i, frame := range s.Frames {
		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%03d.jpg", i))
		if err := SaveFrame(frame, contrast, quality, filename); err != nil {
			return paths, fmt.Errorf("saving %s: %w", frame.Name, err)
		}
		paths = append(paths, filename)
	}

	return paths, nil
}
