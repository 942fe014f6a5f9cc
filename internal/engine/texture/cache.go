package texture

import (
	"image"
	"image/color"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/logger"
)

// Placeholder colors, chosen to stand out on any model.
var (
	placeholderA = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	placeholderB = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Cache loads each texture file once and hands out the same handle for
// the same path for as long as the cache lives. Files that cannot be
// decoded resolve to a shared checkerboard placeholder.
// Cache is not safe for concurrent use; call it on the GL thread.
type Cache struct {
	device  gpu.TextureDevice
	maxSize int
	load    func(path string) (*image.RGBA, error)

	handles     map[string]gpu.TextureHandle
	owned       []gpu.TextureHandle // Distinct handles to release on Purge
	placeholder gpu.TextureHandle
	white       gpu.TextureHandle
}

// NewCache creates an empty cache on device. maxSize, when positive,
// downscales larger images so neither side exceeds it.
func NewCache(device gpu.TextureDevice, maxSize int) *Cache {
	return &Cache{
		device:  device,
		maxSize: maxSize,
		load:    LoadImage,
		handles: make(map[string]gpu.TextureHandle),
	}
}

// Load returns the texture handle for path, decoding and uploading the file
// on first use. It never fails: errors are logged and the placeholder is
// returned (0 only if even the placeholder cannot be created).
func (c *Cache) Load(path string) gpu.TextureHandle {
	key := filepath.Clean(path)
	if h, ok := c.handles[key]; ok {
		return h
	}

	h, err := c.upload(key)
	if err != nil {
		logger.Warn("texture not loaded, using placeholder",
			zap.String("path", key), zap.Error(err))
		h = c.Placeholder()
	} else {
		logger.Debug("texture loaded", zap.String("path", key), zap.Uint32("handle", uint32(h)))
	}
	c.handles[key] = h
	return h
}

func (c *Cache) upload(path string) (gpu.TextureHandle, error) {
	img, err := c.load(path)
	if err != nil {
		return 0, err
	}
	h, err := c.device.CreateTexture(FitSize(img, c.maxSize))
	if err != nil {
		return 0, err
	}
	c.owned = append(c.owned, h)
	return h, nil
}

// Placeholder returns the handle used for textures that failed to load.
func (c *Cache) Placeholder() gpu.TextureHandle {
	if c.placeholder == 0 {
		c.placeholder = c.builtin("placeholder", Checker(8, 4, placeholderA, placeholderB))
	}
	return c.placeholder
}

// White returns a 1x1 white texture, bound when a material has no diffuse map
// so untextured and textured materials share one shader path.
func (c *Cache) White() gpu.TextureHandle {
	if c.white == 0 {
		c.white = c.builtin("white", Solid(1, color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	}
	return c.white
}

func (c *Cache) builtin(name string, img *image.RGBA) gpu.TextureHandle {
	h, err := c.device.CreateTexture(img)
	if err != nil {
		logger.Error("failed to create builtin texture", zap.String("name", name), zap.Error(err))
		return 0
	}
	c.owned = append(c.owned, h)
	return h
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	return len(c.handles)
}

// Purge releases every texture the cache created, including the builtin
// ones, and forgets all paths. Handles handed out earlier become invalid.
func (c *Cache) Purge() error {
	var err error
	for i := len(c.owned) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.device.DeleteTexture(c.owned[i]))
	}
	c.owned = nil
	c.placeholder, c.white = 0, 0
	clear(c.handles)
	return err
}
