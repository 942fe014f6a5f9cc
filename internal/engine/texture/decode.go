// Package texture decodes image files and manages GPU textures for materials.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrUnsupportedFormat is returned for files whose signature names a type
// with no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// decodable lists the sniffed extensions image.Decode can handle.
var decodable = map[string]bool{
	"jpg": true, "png": true, "gif": true, "bmp": true, "tif": true, "webp": true,
}

// LoadImage reads and decodes an image file. TGA is selected by extension
// since it has no signature; every other format is sniffed from its header.
func LoadImage(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}

	if kind, _ := filetype.Match(data); kind != filetype.Unknown && !decodable[kind.Extension] {
		return nil, fmt.Errorf("decoding %s: %w: %s", path, ErrUnsupportedFormat, kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to *image.RGBA with its origin at (0, 0).
// An RGBA image already at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FitSize downscales img so neither side exceeds maxSize, keeping the aspect
// ratio. maxSize <= 0 or an image that already fits is returned unchanged.
func FitSize(img *image.RGBA, maxSize int) *image.RGBA {
	b := img.Bounds()
	if maxSize <= 0 || (b.Dx() <= maxSize && b.Dy() <= maxSize) {
		return img
	}
	return ToRGBA(resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear))
}

// Solid returns a size x size image filled with c.
func Solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Checker returns a size x size checkerboard of a and b with cell-pixel squares.
func Checker(size, cell int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
