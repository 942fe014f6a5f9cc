package formats

import (
	"errors"
	"strings"
	"testing"
)

func TestParseMTL_Fields(t *testing.T) {
	data := `# material library
newmtl shiny
Ka 0.2 0.2 0.2
Kd 0.8 0.5 0.1
Ks 1 1 1
Ke 0 0 0
Ns 2048
Ni 1.5
Tr 0.25
illum 2
map_Ka amb.tga
map_Kd -s 2 2 1 -o 0.5 textures/my diffuse.png
map_Ks -clamp on spec.jpg
bump -bm 0.3 normal.png

newmtl plain
Kd 0.5
`
	mats, warnings, err := ParseMTL(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}

	shiny := mats[0]
	if shiny.Name != "shiny" {
		t.Errorf("expected name 'shiny', got %q", shiny.Name)
	}
	if shiny.Diffuse != [3]float32{0.8, 0.5, 0.1} {
		t.Errorf("unexpected diffuse %v", shiny.Diffuse)
	}
	// Out-of-range exponents are kept verbatim.
	if shiny.Shininess != 2048 {
		t.Errorf("expected shininess 2048, got %v", shiny.Shininess)
	}
	if shiny.Dissolve != 0.75 {
		t.Errorf("expected dissolve 0.75 from Tr, got %v", shiny.Dissolve)
	}
	if shiny.Illum != 2 {
		t.Errorf("expected illum 2, got %d", shiny.Illum)
	}

	texTests := []struct {
		name string
		got  string
		want string
	}{
		{"map_Ka", shiny.AmbientTexname, "amb.tga"},
		{"map_Kd with options", shiny.DiffuseTexname, "textures/my diffuse.png"},
		{"map_Ks with clamp", shiny.SpecularTexname, "spec.jpg"},
		{"bump", shiny.BumpTexname, "normal.png"},
	}
	for _, tt := range texTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	plain := mats[1]
	if plain.Diffuse != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("single-value Kd should replicate, got %v", plain.Diffuse)
	}
	if plain.Shininess != 1 || plain.Dissolve != 1 || plain.IOR != 1 {
		t.Errorf("unexpected defaults: Ns=%v d=%v Ni=%v", plain.Shininess, plain.Dissolve, plain.IOR)
	}
}

func TestParseMTL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"statement before newmtl", "Kd 1 1 1\n", ErrMaterialBeforeNewmtl},
		{"newmtl without name", "newmtl\n", ErrMalformedMTLLine},
		{"bad color", "newmtl a\nKd x 1 1\n", ErrMalformedMTLLine},
		{"bad exponent", "newmtl a\nNs high\n", ErrMalformedMTLLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseMTL(strings.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseMTL_UnknownStatementWarns(t *testing.T) {
	mats, warnings, err := ParseMTL(strings.NewReader("newmtl a\nPr 0.5\n"))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(mats) != 1 {
		t.Fatalf("expected 1 material, got %d", len(mats))
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", warnings)
	}
}
