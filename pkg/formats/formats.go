// Package formats loads model files into a scene tree.
//
// glTF and GLB go through github.com/qmuntal/gltf, Wavefront OBJ through a
// small line parser and binary FBX through a record reader. Any of them can
// also be fetched from an http or https URL.
package formats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/rigscope/pkg/scene"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrEmptyOBJ          = errors.New("OBJ has no vertices")
	ErrNoScene           = errors.New("glTF has no scene")
)

// Format identifies a model file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatGLTF           // .gltf and .glb
	FormatOBJ
	FormatFBX
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatGLTF:
		return "glTF"
	case FormatOBJ:
		return "OBJ"
	case FormatFBX:
		return "FBX"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file extension to a format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb", ".vrm":
		return FormatGLTF
	case ".obj":
		return FormatOBJ
	case ".fbx":
		return FormatFBX
	default:
		return FormatUnknown
	}
}

// Model is a loaded file.
type Model struct {
	Root   *scene.Node
	Clips  []Clip
	Format Format
	Path   string
}

// Load reads path with the loader picked by its extension. URLs are
// downloaded with LoadURL.
func Load(path string) (*Model, error) {
	if IsURL(path) {
		return LoadURL(context.Background(), path)
	}
	switch f := DetectFormat(path); f {
	case FormatGLTF:
		return LoadGLTF(path)
	case FormatOBJ:
		return LoadOBJ(path)
	case FormatFBX:
		return LoadFBX(path)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filepath.Base(path), f)
	}
}
