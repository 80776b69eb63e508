package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// primitive is one triangulated batch of world-space geometry. Optional
// attribute slices are nil when the source primitive lacks them; when
// present they run parallel to positions.
type primitive struct {
	positions [][3]float32
	normals   [][3]float32
	texcoords [][2]float32
	colors    [][3]float32
	faces     [][3]int
	material  int // index into model.materials, -1 when unset
}

// object groups the primitives contributed by one scene node.
type object struct {
	name  string
	prims []primitive
}

// material carries the subset of PBR parameters expressible in MTL.
type material struct {
	name     string
	diffuse  [3]float64
	alpha    float64
	emissive [3]float64
}

// model is everything extracted from a document, ready for OBJ emission.
type model struct {
	objects   []object
	materials []material
}

// faceCount reports the total number of triangles across all objects.
func (m *model) faceCount() int {
	total := 0
	for _, o := range m.objects {
		for _, p := range o.prims {
			total += len(p.faces)
		}
	}
	return total
}

// extractor walks a decoded document and accumulates the model.
type extractor struct {
	doc      *gltf.Document
	model    *model
	matIndex map[int]int     // document material index -> model material index
	matNames map[string]bool // names already handed out, to keep MTL entries unique
}

// extract walks the document's scene graph and returns the world-space
// geometry it contributes. Cancelling ctx stops the walk between meshes.
func extract(ctx context.Context, doc *gltf.Document) (*model, error) {
	e := &extractor{
		doc:      doc,
		model:    &model{},
		matIndex: make(map[int]int),
		matNames: make(map[string]bool),
	}

	seen := make(map[int]bool)
	for _, idx := range sceneRoots(doc) {
		if err := e.node(ctx, idx, identity, seen); err != nil {
			return nil, err
		}
	}
	return e.model, nil
}

// sceneRoots picks the root nodes to walk: the document's default scene,
// the first scene when no default is set, or, for documents with no
// scenes at all, every node that no other node claims as a child.
func sceneRoots(doc *gltf.Document) []int {
	var scene *gltf.Scene
	switch {
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		scene = doc.Scenes[*doc.Scene]
	case len(doc.Scenes) > 0:
		scene = doc.Scenes[0]
	}
	if scene != nil {
		return scene.Nodes
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	roots := make([]int, 0, len(doc.Nodes))
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (e *extractor) node(ctx context.Context, idx int, parent mat4, seen map[int]bool) error {
	if idx < 0 || idx >= len(e.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if seen[idx] {
		return fmt.Errorf("node %d appears in its own ancestry", idx)
	}
	seen[idx] = true
	// Reuse across sibling branches is legal; only cycles are fatal.
	defer delete(seen, idx)

	node := e.doc.Nodes[idx]
	world := parent.mul(nodeTransform(node))

	if node.Mesh != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.mesh(*node.Mesh, nodeName(e.doc, node, idx), world); err != nil {
			return err
		}
	}

	for _, c := range node.Children {
		if err := e.node(ctx, c, world, seen); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the node's local transform. A node carries either
// an explicit matrix or a translation/rotation/scale triple; unset TRS
// components take their glTF defaults.
func nodeTransform(n *gltf.Node) mat4 {
	if m := mat4(n.Matrix); m != (mat4{}) && m != identity {
		return m
	}

	r := n.Rotation
	if r == ([4]float64{}) {
		r = [4]float64{0, 0, 0, 1}
	}
	s := n.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	return fromTRS(n.Translation, r, s)
}

func nodeName(doc *gltf.Document, n *gltf.Node, idx int) string {
	if n.Name != "" {
		return sanitizeName(n.Name)
	}
	if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(doc.Meshes) {
		if name := doc.Meshes[*n.Mesh].Name; name != "" {
			return sanitizeName(name)
		}
	}
	return fmt.Sprintf("node_%d", idx)
}

func (e *extractor) mesh(idx int, name string, world mat4) error {
	if idx < 0 || idx >= len(e.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", idx)
	}

	obj := object{name: name}
	normals := world.normalMatrix()

	for _, prim := range e.doc.Meshes[idx].Primitives {
		p, ok, err := e.primitive(prim, world, normals)
		if err != nil {
			return err
		}
		if ok {
			obj.prims = append(obj.prims, p)
		}
	}

	if len(obj.prims) > 0 {
		e.model.objects = append(e.model.objects, obj)
	}
	return nil
}

// primitive reads one glTF primitive into world space. Primitives without
// positions or faces report ok=false and are skipped; broken required
// data (positions, indices) is an error, while optional attributes that
// fail to read are simply dropped.
func (e *extractor) primitive(prim *gltf.Primitive, world mat4, normals mat3) (primitive, bool, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		// Points and lines have no OBJ face representation.
		return primitive{}, false, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return primitive{}, false, nil
	}
	posAcc, err := e.accessor(posIdx)
	if err != nil {
		return primitive{}, false, err
	}
	positions, err := modeler.ReadPosition(e.doc, posAcc, nil)
	if err != nil {
		return primitive{}, false, fmt.Errorf("reading positions: %w", err)
	}
	if len(positions) == 0 {
		return primitive{}, false, nil
	}

	p := primitive{material: -1}
	p.positions = make([][3]float32, len(positions))
	for i := range positions {
		p.positions[i] = world.transformPoint(positions[i])
	}

	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err := e.accessor(nIdx); err == nil {
			if ns, err := modeler.ReadNormal(e.doc, acc, nil); err == nil && len(ns) == len(positions) {
				p.normals = make([][3]float32, len(ns))
				for i := range ns {
					p.normals[i] = normals.transformDir(ns[i])
				}
			}
		}
	}

	if tIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acc, err := e.accessor(tIdx); err == nil {
			if uvs, err := modeler.ReadTextureCoord(e.doc, acc, nil); err == nil && len(uvs) == len(positions) {
				p.texcoords = make([][2]float32, len(uvs))
				for i := range uvs {
					// OBJ puts the texture origin at the bottom-left,
					// glTF at the top-left.
					p.texcoords[i] = [2]float32{uvs[i][0], 1 - uvs[i][1]}
				}
			}
		}
	}

	if cIdx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if acc, err := e.accessor(cIdx); err == nil {
			if cs, err := modeler.ReadColor(e.doc, acc, nil); err == nil && len(cs) == len(positions) {
				p.colors = make([][3]float32, len(cs))
				for i := range cs {
					p.colors[i] = [3]float32{
						float32(cs[i][0]) / 255,
						float32(cs[i][1]) / 255,
						float32(cs[i][2]) / 255,
					}
				}
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := e.accessor(*prim.Indices)
		if err != nil {
			return primitive{}, false, err
		}
		indices, err = modeler.ReadIndices(e.doc, acc, nil)
		if err != nil {
			return primitive{}, false, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	p.faces, err = triangulate(indices, prim.Mode, len(positions))
	if err != nil {
		return primitive{}, false, err
	}
	if len(p.faces) == 0 {
		return primitive{}, false, nil
	}

	if prim.Material != nil {
		mi, err := e.material(*prim.Material)
		if err != nil {
			return primitive{}, false, err
		}
		p.material = mi
	}

	return p, true, nil
}

// triangulate expands an index stream into triangles according to the
// primitive mode, rejecting indices that point past the vertex data.
func triangulate(indices []uint32, mode gltf.PrimitiveMode, vertexCount int) ([][3]int, error) {
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, fmt.Errorf("face index %d exceeds vertex count %d", idx, vertexCount)
		}
	}

	var faces [][3]int
	switch mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			// Every other strip triangle flips winding.
			if i%2 == 1 {
				a, b = b, a
			}
			faces = append(faces, [3]int{a, b, c})
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, [3]int{int(indices[0]), int(indices[i]), int(indices[i+1])})
		}
	}
	return faces, nil
}

func (e *extractor) material(idx int) (int, error) {
	if idx < 0 || idx >= len(e.doc.Materials) {
		return 0, fmt.Errorf("material %d out of range", idx)
	}
	if mi, ok := e.matIndex[idx]; ok {
		return mi, nil
	}

	src := e.doc.Materials[idx]
	mat := material{
		name:    sanitizeName(src.Name),
		diffuse: [3]float64{1, 1, 1},
		alpha:   1,
	}
	if mat.name == "" {
		mat.name = fmt.Sprintf("material_%d", idx)
	}
	if e.matNames[mat.name] {
		mat.name = fmt.Sprintf("%s_%d", mat.name, idx)
	}
	e.matNames[mat.name] = true

	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		mat.diffuse = [3]float64{c[0], c[1], c[2]}
		mat.alpha = c[3]
	}
	mat.emissive = [3]float64{src.EmissiveFactor[0], src.EmissiveFactor[1], src.EmissiveFactor[2]}

	mi := len(e.model.materials)
	e.model.materials = append(e.model.materials, mat)
	e.matIndex[idx] = mi
	return mi, nil
}

func (e *extractor) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(e.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return e.doc.Accessors[idx], nil
}

// sanitizeName maps scene names onto the conservative character set that
// OBJ statement arguments tolerate.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
