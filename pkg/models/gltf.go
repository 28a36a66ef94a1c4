package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/orrery/pkg/math3d"
)

// ErrUnsupported is returned for glTF content the loader cannot read.
var ErrUnsupported = errors.New("unsupported gltf content")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in normals when the file has none.
	CalculateNormals bool
	SmoothNormals    bool
	// Size, when positive, recenters the mesh and scales its largest
	// dimension to Size.
	Size float64
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(filepath.Base(path), doc)
}

// FromDocument converts every triangle primitive of doc into one mesh.
// Only embedded buffers are supported.
func (l *GLTFLoader) FromDocument(name string, doc *gltf.Document) (*Mesh, error) {
	mesh := NewMesh(name)
	for _, mat := range doc.Materials {
		m := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			m.BaseColor = *pbr.BaseColorFactor
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	if l.Size > 0 {
		mesh.Normalize(l.Size)
	} else {
		mesh.CalculateBounds()
	}
	return mesh, nil
}

// processMesh appends the geometry of one glTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i].Normalize()
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}
		// glTF front faces are counter-clockwise, same as the rasterizer.
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}, Material: material}
			if !validIndex(f.V, len(mesh.Vertices)) {
				return fmt.Errorf("face %d: index out of range: %w", i/3, ErrUnsupported)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return nil
}

func validIndex(v [3]int, n int) bool {
	for _, i := range v {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

// accessorView returns the bytes, stride and count behind an accessor.
func accessorView(doc *gltf.Document, idx int, elemSize int) ([]byte, int, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w", idx, ErrUnsupported)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor %d has no buffer view: %w", idx, ErrUnsupported)
	}
	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d is external or empty: %w", bv.Buffer, ErrUnsupported)
	}
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elemSize
		if end > len(buf.Data) {
			return nil, 0, 0, fmt.Errorf("accessor %d overruns buffer: %w", idx, ErrUnsupported)
		}
	}
	return buf.Data[start:], stride, acc.Count, nil
}

func readFloats(doc *gltf.Document, idx int, want gltf.AccessorType, n int) ([]float32, error) {
	acc := doc.Accessors[idx]
	if acc.Type != want || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("accessor %d is %v/%v: %w", idx, acc.Type, acc.ComponentType, ErrUnsupported)
	}
	data, stride, count, err := accessorView(doc, idx, 4*n)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count*n)
	for i := range count {
		for j := range n {
			off := i*stride + j*4
			out[i*n+j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}

func readVec3(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrUnsupported)
	}
	f, err := readFloats(doc, idx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, len(f)/3)
	for i := range out {
		out[i] = math3d.V3(float64(f[3*i]), float64(f[3*i+1]), float64(f[3*i+2]))
	}
	return out, nil
}

func readVec2(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrUnsupported)
	}
	f, err := readFloats(doc, idx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, len(f)/2)
	for i := range out {
		out[i] = math3d.V2(float64(f[2*i]), float64(f[2*i+1]))
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrUnsupported)
	}
	acc := doc.Accessors[idx]
	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("index type %v: %w", acc.ComponentType, ErrUnsupported)
	}
	data, stride, count, err := accessorView(doc, idx, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, count)
	for i := range count {
		off := i * stride
		switch size {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(data[off:]))
		default:
			out[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}
