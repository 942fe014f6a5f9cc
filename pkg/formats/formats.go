// Package formats parses the Wavefront OBJ geometry format and its MTL
// material libraries into plain Go values. Faces are triangulated and
// indices made zero-based; nothing here touches the GPU.
package formats
