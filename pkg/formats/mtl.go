package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/objviewer/pkg/encoding"
)

// MTL format errors.
var (
	ErrMaterialBeforeNewmtl = errors.New("MTL statement before newmtl")
	ErrMalformedMTLLine     = errors.New("malformed MTL line")
)

// MTLMaterial represents one "newmtl" block of a material library.
type MTLMaterial struct {
	Name     string
	Ambient  [3]float32 // Ka
	Diffuse  [3]float32 // Kd
	Specular [3]float32 // Ks
	Emission [3]float32 // Ke

	Shininess float32 // Ns, specular exponent
	IOR       float32 // Ni
	Dissolve  float32 // d, or 1 - Tr
	Illum     int     // Illumination model

	AmbientTexname  string // map_Ka
	DiffuseTexname  string // map_Kd
	SpecularTexname string // map_Ks
	BumpTexname     string // map_Bump / bump
}

// newMTLMaterial returns a material with the format's default values.
func newMTLMaterial(name string) MTLMaterial {
	return MTLMaterial{
		Name:      name,
		Shininess: 1,
		IOR:       1,
		Dissolve:  1,
	}
}

// texOptionArgs lists texture map options and how many arguments each takes at most.
var texOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-texres":  1,
	"-type":    1,
	"-mm":      2,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

// ParseMTL parses a material library. Unknown statements are returned as warnings.
func ParseMTL(r io.Reader) ([]MTLMaterial, []string, error) {
	var (
		materials []MTLMaterial
		warnings  []string
		current   *MTLMaterial
		line      int
	)

	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf("mtl(%d): ", line)+fmt.Sprintf(format, args...))
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		key := fields[0]
		args := fields[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return nil, warnings, fmt.Errorf("line %d: %w: newmtl without name", line, ErrMalformedMTLLine)
			}
			materials = append(materials, newMTLMaterial(encoding.Name(strings.Join(args, " "))))
			current = &materials[len(materials)-1]
			continue
		}
		if current == nil {
			return nil, warnings, fmt.Errorf("line %d: %w: %s", line, ErrMaterialBeforeNewmtl, key)
		}

		var err error
		switch key {
		case "Ka":
			current.Ambient, err = parseColor(args)
		case "Kd":
			current.Diffuse, err = parseColor(args)
		case "Ks":
			current.Specular, err = parseColor(args)
		case "Ke":
			current.Emission, err = parseColor(args)
		case "Ns":
			current.Shininess, err = parseScalar(args)
		case "Ni":
			current.IOR, err = parseScalar(args)
		case "d":
			current.Dissolve, err = parseScalar(args)
		case "Tr":
			var tr float32
			tr, err = parseScalar(args)
			current.Dissolve = 1 - tr
		case "illum":
			if len(args) < 1 {
				err = errors.New("missing value")
			} else {
				current.Illum, err = strconv.Atoi(args[0])
			}
		case "map_Ka":
			current.AmbientTexname = parseTexname(args)
		case "map_Kd":
			current.DiffuseTexname = parseTexname(args)
		case "map_Ks":
			current.SpecularTexname = parseTexname(args)
		case "map_Bump", "map_bump", "bump":
			current.BumpTexname = parseTexname(args)
		default:
			warn("unsupported statement %q", key)
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w: %s: %v", line, ErrMalformedMTLLine, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("reading MTL: %w", err)
	}

	return materials, warnings, nil
}

// parseColor parses "r g b"; a single value is replicated to all channels.
func parseColor(args []string) ([3]float32, error) {
	var c [3]float32
	if len(args) < 1 {
		return c, errors.New("missing color")
	}
	if args[0] == "spectral" || args[0] == "xyz" {
		return c, fmt.Errorf("%s colors not supported", args[0])
	}
	n := len(args)
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return c, err
		}
		c[i] = float32(v)
	}
	if n == 1 {
		c[1], c[2] = c[0], c[0]
	}
	return c, nil
}

func parseScalar(args []string) (float32, error) {
	if len(args) < 1 {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(args[0], 32)
	return float32(v), err
}

// parseTexname strips texture options and returns the file name.
// File names may contain spaces, so the remaining fields are rejoined.
func parseTexname(args []string) string {
	i := 0
	for i < len(args) {
		maxArgs, isOption := texOptionArgs[args[i]]
		if !isOption {
			break
		}
		i++
		for n := 0; n < maxArgs && i < len(args); n++ {
			if _, err := strconv.ParseFloat(args[i], 32); err != nil && n > 0 {
				break
			}
			i++
		}
	}
	return strings.Join(args[i:], " ")
}
