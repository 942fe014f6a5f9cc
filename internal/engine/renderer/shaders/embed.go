// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms mesh vertices into clip space.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades a sub-mesh with its material.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader transforms overlay line endpoints.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader draws overlay lines in a flat color.
//
//go:embed line.frag
var LineFragmentShader string
