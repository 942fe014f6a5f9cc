package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

// tgaHeaderSize is the fixed TGA header length.
const tgaHeaderSize = 18

// TGA decoding errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

type tgaHeader struct {
	idLength    int
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
	rightToLeft bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, ErrTGATruncated
	}
	h := tgaHeader{
		idLength:    int(data[0]),
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		bpp:         int(data[16]),
		rightToLeft: data[17]&0x10 != 0,
		topToBottom: data[17]&0x20 != 0,
	}

	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped image", ErrTGAUnsupported)
	}
	switch h.imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return h, fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, h.bpp)
		}
	case TGATypeGray, TGATypeGrayRLE:
		if h.bpp != 8 {
			return h, fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, h.bpp)
		}
	default:
		return h, fmt.Errorf("%w: image type %d", ErrTGAUnsupported, h.imageType)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("%w: empty image %dx%d", ErrTGAUnsupported, h.width, h.height)
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or RLE TGA image (true-color 24/32-bit
// or 8-bit grayscale). The result is oriented top row first.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	d := &tgaDecoder{
		hdr:    h,
		src:    data[offset:],
		stride: h.bpp / 8,
		img:    image.NewRGBA(image.Rect(0, 0, h.width, h.height)),
	}
	if h.imageType == TGATypeTrueColorRLE || h.imageType == TGATypeGrayRLE {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	hdr    tgaHeader
	src    []byte
	pos    int
	stride int // Bytes per pixel
	pixel  int // Next pixel in file order
	img    *image.RGBA
}

// readColor consumes one pixel value (stored BGR(A) or gray).
func (d *tgaDecoder) readColor() (color.RGBA, error) {
	if d.pos+d.stride > len(d.src) {
		return color.RGBA{}, ErrTGATruncated
	}
	p := d.src[d.pos : d.pos+d.stride]
	d.pos += d.stride

	if d.stride == 1 {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}, nil
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.stride == 4 {
		c.A = p[3]
	}
	return c, nil
}

// put stores c at the next pixel, honoring the origin bits of the descriptor.
func (d *tgaDecoder) put(c color.RGBA) {
	w, h := d.hdr.width, d.hdr.height
	x, y := d.pixel%w, d.pixel/w
	if d.hdr.rightToLeft {
		x = w - 1 - x
	}
	if !d.hdr.topToBottom {
		y = h - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) total() int {
	return d.hdr.width * d.hdr.height
}

func (d *tgaDecoder) decodeRaw() error {
	for d.pixel < d.total() {
		c, err := d.readColor()
		if err != nil {
			return err
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	for d.pixel < d.total() {
		if d.pos >= len(d.src) {
			return ErrTGATruncated
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1
		if remaining := d.total() - d.pixel; count > remaining {
			count = remaining
		}

		if packet&0x80 != 0 {
			// Run packet: one value repeated
			c, err := d.readColor()
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				d.put(c)
			}
			continue
		}

		// Raw packet: count literal values
		for i := 0; i < count; i++ {
			c, err := d.readColor()
			if err != nil {
				return err
			}
			d.put(c)
		}
	}
	return nil
}
