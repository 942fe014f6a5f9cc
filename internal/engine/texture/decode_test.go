package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

func TestLoadImagePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := writePNG(t, t.TempDir(), "a.png", src)

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("unexpected size %v", img.Bounds())
	}
	if got := img.RGBAAt(2, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLoadImageTGAByExtension(t *testing.T) {
	data := tgaHeaderBytes(TGATypeTrueColor, 1, 1, 24, 0)
	data = append(data, 3, 2, 1)
	path := filepath.Join(t.TempDir(), "a.TGA")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadImage(garbage); err == nil {
		t.Error("expected error for undecodable file")
	}
}

func TestLoadImageUnsupportedSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffuse.png")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadImage(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/pdf") {
		t.Errorf("error should name the detected type: %v", err)
	}
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 8))
	src.SetRGBA(5, 5, color.RGBA{1, 2, 3, 4})

	got := ToRGBA(src)
	if got.Rect.Min != (image.Point{}) || got.Rect.Dx() != 2 || got.Rect.Dy() != 3 {
		t.Fatalf("unexpected bounds %v", got.Rect)
	}
	if c := got.RGBAAt(0, 0); c != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("pixel = %v", c)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		maxSize int
		wantW   int
		wantH   int
	}{
		{"unlimited", 64, 32, 0, 64, 32},
		{"fits", 64, 32, 64, 64, 32},
		{"wide", 256, 128, 64, 64, 32},
		{"tall", 100, 400, 100, 25, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := FitSize(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.maxSize)
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestBuiltinImages(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	if got := Solid(1, white).RGBAAt(0, 0); got != white {
		t.Errorf("solid pixel = %v", got)
	}

	a, b := color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}
	img := Checker(4, 2, a, b)
	if img.RGBAAt(0, 0) != a || img.RGBAAt(2, 0) != b || img.RGBAAt(2, 2) != a {
		t.Error("unexpected checker pattern")
	}
}
