// Package formats reads and writes mesh files.
//
// OBJ files are parsed into multi-indexed streams (one block per attribute
// kind) and unified into single-index meshes. glTF is an export target.
// Both sides agree on the attribute names below.
package formats

import "github.com/Faultbox/meshkit/pkg/mesh"

// Attribute names shared by the importers and exporters.
const (
	AttrPosition = "position"
	AttrTexCoord = "texcoord"
	AttrNormal   = "normal"
)

// NamedMesh is a unified mesh with its object name.
type NamedMesh[I mesh.Index] struct {
	Name string
	Mesh *mesh.IndexedMesh[I]
}
