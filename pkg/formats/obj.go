package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/objviewer/pkg/encoding"
)

// OBJ format errors.
var (
	ErrOBJNotFound       = errors.New("OBJ file not found")
	ErrInvalidOBJIndex   = errors.New("invalid OBJ face index")
	ErrTooFewFaceCorners = errors.New("OBJ face has fewer than 3 corners")
	ErrMalformedOBJLine  = errors.New("malformed OBJ line")
	ErrMaterialLibrary   = errors.New("unreadable material library")
)

// NoIndex marks an absent normal or texcoord reference in a face corner.
const NoIndex int32 = -1

// maxOBJLineSize bounds a single OBJ line (large polygon faces can be long).
const maxOBJLineSize = 1 << 20

// OBJIndex references one face corner. Indices are 0-based; NoIndex means absent.
type OBJIndex struct {
	Vertex   int32 // Index into positions (always set)
	Normal   int32 // Index into normals or NoIndex
	TexCoord int32 // Index into texcoords or NoIndex
}

// OBJAttributes holds the shared attribute pools referenced by all shapes.
type OBJAttributes struct {
	Positions []float32 // x, y, z per vertex
	Normals   []float32 // x, y, z per normal
	TexCoords []float32 // u, v per texcoord
	Colors    []float32 // r, g, b per vertex (only meaningful when HasColors)
	HasColors bool      // At least one "v" line carried the color extension
}

// PositionCount returns the number of vertex positions.
func (a *OBJAttributes) PositionCount() int { return len(a.Positions) / 3 }

// NormalCount returns the number of normals.
func (a *OBJAttributes) NormalCount() int { return len(a.Normals) / 3 }

// TexCoordCount returns the number of texture coordinates.
func (a *OBJAttributes) TexCoordCount() int { return len(a.TexCoords) / 2 }

// OBJShape is a named group of triangulated faces ("o" or "g" in the file).
type OBJShape struct {
	Name            string
	Indices         []OBJIndex // 3 corners per face
	MaterialIDs     []int32    // Per-face index into OBJ.Materials, -1 if unresolved
	SmoothingGroups []uint32   // Per-face smoothing group (0 = off)
	materialNames   []string
}

// FaceCount returns the number of triangles in the shape.
func (s *OBJShape) FaceCount() int { return len(s.Indices) / 3 }

// OBJ represents a parsed OBJ file together with its material libraries.
type OBJ struct {
	Attributes  OBJAttributes
	Shapes      []OBJShape
	Materials   []MTLMaterial
	MaterialDir string   // Directory used to resolve material libraries and textures
	Warnings    []string // Non-fatal diagnostics collected while parsing
}

// MaterialOpener opens a material library referenced by "mtllib".
type MaterialOpener func(name string) (io.ReadCloser, error)

// LoadOBJ reads and parses an OBJ file from disk.
// Material libraries are resolved relative to the OBJ file's directory.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrOBJNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	obj, err := ParseOBJ(f, func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	obj.MaterialDir = dir
	return obj, nil
}

// ParseOBJ parses OBJ data from r. opener may be nil, in which case
// "mtllib" directives are reported as warnings and ignored.
// A library the opener reports as fs.ErrNotExist is a warning; any other
// open, read or MTL syntax error fails the parse with ErrMaterialLibrary.
func ParseOBJ(r io.Reader, opener MaterialOpener) (*OBJ, error) {
	p := &objParser{
		obj:      &OBJ{},
		opener:   opener,
		matIndex: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLineSize)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	p.flushShape()
	p.resolveMaterials()
	return p.obj, nil
}

type objParser struct {
	obj    *OBJ
	opener MaterialOpener
	line   int

	current  OBJShape
	material string
	smooth   uint32

	matIndex map[string]int
	missing  map[string]bool
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		return p.parseVertex(fields[1:])
	case "vn":
		return p.parseFloats(fields[1:], 3, &p.obj.Attributes.Normals, "vn")
	case "vt":
		return p.parseFloats(fields[1:], 2, &p.obj.Attributes.TexCoords, "vt")
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		p.flushShape()
		if len(fields) > 1 {
			p.current.Name = encoding.Name(strings.Join(fields[1:], " "))
		}
	case "usemtl":
		if len(fields) < 2 {
			p.warn("usemtl without a material name")
			return nil
		}
		p.material = encoding.Name(strings.Join(fields[1:], " "))
	case "mtllib":
		for _, name := range fields[1:] {
			if err := p.loadMaterialLibrary(name); err != nil {
				return err
			}
		}
	case "s":
		p.parseSmoothing(fields[1:])
	case "l", "p", "vp":
		p.warn("unsupported element %q ignored", fields[0])
	default:
		p.warn("unknown directive %q", fields[0])
	}
	return nil
}

// parseVertex parses "v x y z [w]" or the color extension "v x y z r g b".
func (p *objParser) parseVertex(fields []string) error {
	attrs := &p.obj.Attributes
	if len(fields) < 3 {
		return p.formatError("v needs 3 components, got %d", len(fields))
	}
	var vals [6]float32
	n := len(fields)
	if n > 6 {
		n = 6
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return p.formatError("v component %q: %v", fields[i], err)
		}
		vals[i] = float32(v)
	}
	attrs.Positions = append(attrs.Positions, vals[0], vals[1], vals[2])

	if n == 6 {
		if !attrs.HasColors {
			// Backfill white for vertices declared before the first colored one
			attrs.Colors = attrs.Colors[:0]
			for i := 0; i < attrs.PositionCount()-1; i++ {
				attrs.Colors = append(attrs.Colors, 1, 1, 1)
			}
			attrs.HasColors = true
		}
		attrs.Colors = append(attrs.Colors, vals[3], vals[4], vals[5])
	} else if attrs.HasColors {
		attrs.Colors = append(attrs.Colors, 1, 1, 1)
	}
	return nil
}

func (p *objParser) parseFloats(fields []string, count int, dst *[]float32, kind string) error {
	if len(fields) < count {
		return p.formatError("%s needs %d components, got %d", kind, count, len(fields))
	}
	for _, f := range fields[:count] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return p.formatError("%s component %q: %v", kind, f, err)
		}
		*dst = append(*dst, float32(v))
	}
	return nil
}

// parseFace parses "f v[/vt][/vn] ..." and fan-triangulates polygons.
func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("line %d: %w (%d)", p.line, ErrTooFewFaceCorners, len(fields))
	}

	corners := make([]OBJIndex, len(fields))
	for i, f := range fields {
		idx, err := p.parseCorner(f)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	for i := 1; i+1 < len(corners); i++ {
		p.current.Indices = append(p.current.Indices, corners[0], corners[i], corners[i+1])
		p.current.materialNames = append(p.current.materialNames, p.material)
		p.current.SmoothingGroups = append(p.current.SmoothingGroups, p.smooth)
	}
	return nil
}

func (p *objParser) parseCorner(token string) (OBJIndex, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 || parts[0] == "" {
		return OBJIndex{}, p.formatError("face corner %q", token)
	}

	attrs := &p.obj.Attributes
	idx := OBJIndex{Normal: NoIndex, TexCoord: NoIndex}

	var err error
	if idx.Vertex, err = p.fixIndex(parts[0], attrs.PositionCount()); err != nil {
		return OBJIndex{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.TexCoord, err = p.fixIndex(parts[1], attrs.TexCoordCount()); err != nil {
			return OBJIndex{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.Normal, err = p.fixIndex(parts[2], attrs.NormalCount()); err != nil {
			return OBJIndex{}, err
		}
	}
	return idx, nil
}

// fixIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func (p *objParser) fixIndex(s string, count int) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w: %q", p.line, ErrInvalidOBJIndex, s)
	}
	switch {
	case n > 0:
		return int32(n - 1), nil
	case n < 0:
		rel := int32(count) + int32(n)
		if rel < 0 {
			return 0, fmt.Errorf("line %d: %w: relative index %d with %d elements", p.line, ErrInvalidOBJIndex, n, count)
		}
		return rel, nil
	default:
		return 0, fmt.Errorf("line %d: %w: index 0", p.line, ErrInvalidOBJIndex)
	}
}

func (p *objParser) parseSmoothing(fields []string) {
	if len(fields) < 1 {
		p.warn("s without a value")
		return
	}
	if fields[0] == "off" {
		p.smooth = 0
		return
	}
	v, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		p.warn("invalid smoothing group %q", fields[0])
		return
	}
	p.smooth = uint32(v)
}

func (p *objParser) loadMaterialLibrary(name string) error {
	if p.opener == nil {
		p.warn("material library %q ignored (no opener)", name)
		return nil
	}
	rc, err := p.opener(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.warn("material library %q not found", name)
			return nil
		}
		return fmt.Errorf("line %d: %w %q: %w", p.line, ErrMaterialLibrary, name, err)
	}
	defer rc.Close()

	mats, warnings, err := ParseMTL(rc)
	for _, w := range warnings {
		p.obj.Warnings = append(p.obj.Warnings, name+": "+w)
	}
	if err != nil {
		return fmt.Errorf("line %d: %w %q: %w", p.line, ErrMaterialLibrary, name, err)
	}
	for _, m := range mats {
		if _, dup := p.matIndex[m.Name]; dup {
			p.warn("material %q redefined in %s", m.Name, name)
		}
		p.matIndex[m.Name] = len(p.obj.Materials)
		p.obj.Materials = append(p.obj.Materials, m)
	}
	return nil
}

// flushShape appends the current shape if it has faces and starts a new one.
func (p *objParser) flushShape() {
	if len(p.current.Indices) > 0 {
		p.obj.Shapes = append(p.obj.Shapes, p.current)
	}
	p.current = OBJShape{}
}

// resolveMaterials maps per-face material names to material indices.
// Resolution happens after the whole file is read so "mtllib" may appear anywhere.
func (p *objParser) resolveMaterials() {
	for si := range p.obj.Shapes {
		shape := &p.obj.Shapes[si]
		shape.MaterialIDs = make([]int32, len(shape.materialNames))
		for fi, name := range shape.materialNames {
			shape.MaterialIDs[fi] = p.lookupMaterial(name)
		}
		shape.materialNames = nil
	}
}

func (p *objParser) lookupMaterial(name string) int32 {
	if name == "" {
		return -1
	}
	if id, ok := p.matIndex[name]; ok {
		return int32(id)
	}
	if p.missing == nil {
		p.missing = make(map[string]bool)
	}
	if !p.missing[name] {
		p.missing[name] = true
		p.obj.Warnings = append(p.obj.Warnings, fmt.Sprintf("obj: material %q not found, using default", name))
	}
	return -1
}

func (p *objParser) warn(format string, args ...any) {
	p.obj.Warnings = append(p.obj.Warnings, fmt.Sprintf("obj(%d): ", p.line)+fmt.Sprintf(format, args...))
}

func (p *objParser) formatError(format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", p.line, ErrMalformedOBJLine, fmt.Sprintf(format, args...))
}
