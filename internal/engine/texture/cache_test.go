package texture

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
)

func TestCacheSharesHandles(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	b := writePNG(t, dir, "b.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	dev := gpu.NewMemoryDevice()
	c := NewCache(dev, 0)

	ha := c.Load(a)
	if ha == 0 {
		t.Fatal("expected a texture handle")
	}
	if again := c.Load(filepath.Join(dir, ".", "a.png")); again != ha {
		t.Errorf("same path resolved to %d and %d", ha, again)
	}
	if hb := c.Load(b); hb == ha {
		t.Error("different paths should get different handles")
	}
	if dev.TexturesCreated != 2 {
		t.Errorf("expected 2 uploads, got %d", dev.TexturesCreated)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached paths, got %d", c.Len())
	}
}

func TestCachePlaceholder(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	c := NewCache(dev, 0)

	dir := t.TempDir()
	h1 := c.Load(filepath.Join(dir, "missing1.png"))
	h2 := c.Load(filepath.Join(dir, "missing2.png"))

	if h1 == 0 || h1 != h2 {
		t.Errorf("missing textures should share the placeholder, got %d and %d", h1, h2)
	}
	if h1 != c.Placeholder() {
		t.Error("expected the placeholder handle")
	}
	if dev.TexturesCreated != 1 {
		t.Errorf("expected only the placeholder upload, got %d", dev.TexturesCreated)
	}
}

func TestCacheMaxSize(t *testing.T) {
	path := writePNG(t, t.TempDir(), "big.png", image.NewRGBA(image.Rect(0, 0, 64, 64)))

	dev := gpu.NewMemoryDevice()
	c := NewCache(dev, 16)
	c.Load(path)

	if got := dev.BytesInUse(); got != 16*16*4 {
		t.Errorf("expected a 16x16 upload (%d bytes), got %d", 16*16*4, got)
	}
}

func TestCacheDeviceFailure(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	dev.BudgetBytes = 4 // Room for the 1x1 white texture only

	c := NewCache(dev, 0)
	c.load = func(string) (*image.RGBA, error) {
		return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
	}

	if h := c.Load("big.png"); h != 0 {
		t.Errorf("expected 0 when neither the texture nor the placeholder fit, got %d", h)
	}
}

func TestCacheWhiteAndPurge(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	c := NewCache(dev, 0)
	c.load = func(path string) (*image.RGBA, error) {
		if path == "bad.png" {
			return nil, errors.New("boom")
		}
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	}

	w := c.White()
	if w == 0 || c.White() != w {
		t.Fatal("White should be created once")
	}
	c.Load("ok.png")
	c.Load("bad.png")

	if dev.LiveTextures() != 3 {
		t.Fatalf("expected white, texture and placeholder, got %d", dev.LiveTextures())
	}
	if err := c.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if dev.LiveTextures() != 0 || c.Len() != 0 {
		t.Errorf("expected empty cache after Purge, %d textures %d paths", dev.LiveTextures(), c.Len())
	}

	// Builtins are recreated on demand
	if c.White() == 0 {
		t.Error("White should be recreated after Purge")
	}
}
