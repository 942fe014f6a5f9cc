// Package debug provides viewer diagnostics: screenshots and bounds overlays.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshot writes framebuffer captures as timestamped PNG files.
type Screenshot struct {
	Dir    string
	Prefix string

	now func() time.Time
}

// NewScreenshot creates a capturer writing to dir.
func NewScreenshot(dir, prefix string) *Screenshot {
	return &Screenshot{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture would be written to.
func (s *Screenshot) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.Prefix, s.now().Format("2006-01-02_15-04-05"))
	return filepath.Join(s.Dir, name)
}

// Save encodes bottom-up RGBA pixels, as returned by glReadPixels, into a
// PNG and returns its path.
func (s *Screenshot) Save(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}

	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	path := s.Filename()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, f.Close()
}

// FlipRows copies bottom-up RGBA rows into a top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}
