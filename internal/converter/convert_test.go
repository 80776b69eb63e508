package converter_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glbobx/glbobx-api/internal/converter"
)

// encodeGLB serializes a document in binary glTF form.
func encodeGLB(t *testing.T, doc *gltf.Document) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

// triangleDoc builds a document holding one unit triangle attached to a
// single root node.
func triangleDoc() *gltf.Document {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: positions},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

// unzipAll expands an in-memory archive into a name -> content map.
func unzipAll(t *testing.T, archive []byte) map[string]string {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	out := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(data)
	}
	return out
}

func TestConvertSingleTriangle(t *testing.T) {
	t.Parallel()

	payload := encodeGLB(t, triangleDoc())
	archive, artifacts, err := converter.Convert(context.Background(), payload, "tri.glb")
	require.NoError(t, err)
	require.Equal(t, []string{"tri.obj"}, artifacts)

	files := unzipAll(t, archive)
	require.Contains(t, files, "tri.obj")

	expected := "o root\n" +
		"v 0 0 0\n" +
		"v 1 0 0\n" +
		"v 0 1 0\n" +
		"f 1 2 3\n"
	assert.Equal(t, expected, files["tri.obj"])
}

func TestConvertAppliesNodeTranslation(t *testing.T) {
	t.Parallel()

	doc := triangleDoc()
	doc.Nodes[0].Name = "moved"
	doc.Nodes[0].Translation = [3]float64{1, 2, 3}

	payload := encodeGLB(t, doc)
	archive, _, err := converter.Convert(context.Background(), payload, "moved.glb")
	require.NoError(t, err)

	files := unzipAll(t, archive)
	expected := "o moved\n" +
		"v 1 2 3\n" +
		"v 2 2 3\n" +
		"v 1 3 3\n" +
		"f 1 2 3\n"
	assert.Equal(t, expected, files["moved.obj"])
}

func TestConvertNormalsAndTexcoords(t *testing.T) {
	t.Parallel()

	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	texcoords := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indices),
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION:   positions,
				gltf.NORMAL:     normals,
				gltf.TEXCOORD_0: texcoords,
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "quadrant", Mesh: gltf.Index(0)}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)

	payload := encodeGLB(t, doc)
	archive, _, err := converter.Convert(context.Background(), payload, "uv.glb")
	require.NoError(t, err)

	files := unzipAll(t, archive)
	obj := files["uv.obj"]

	// Texture V flips from glTF's top-left origin to OBJ's bottom-left.
	assert.Contains(t, obj, "vt 0 1\n")
	assert.Contains(t, obj, "vt 1 1\n")
	assert.Contains(t, obj, "vt 0 0\n")
	assert.Contains(t, obj, "vn 0 0 1\n")
	assert.Contains(t, obj, "f 1/1/1 2/2/2 3/3/3\n")
}

func TestConvertMaterials(t *testing.T) {
	t.Parallel()

	doc := triangleDoc()
	doc.Materials = []*gltf.Material{{
		Name: "Red Paint",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 0.5},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	payload := encodeGLB(t, doc)
	archive, artifacts, err := converter.Convert(context.Background(), payload, "scene.glb")
	require.NoError(t, err)
	assert.Equal(t, []string{"scene.obj", "scene.mtl"}, artifacts)

	files := unzipAll(t, archive)
	obj := files["scene.obj"]
	assert.Contains(t, obj, "mtllib scene.mtl\n")
	assert.Contains(t, obj, "usemtl Red_Paint\n")

	mtl := files["scene.mtl"]
	assert.Contains(t, mtl, "newmtl Red_Paint\n")
	assert.Contains(t, mtl, "Kd 1 0 0\n")
	assert.Contains(t, mtl, "d 0.5\n")
}

func TestConvertGlobalFaceIndexing(t *testing.T) {
	t.Parallel()

	// Two nodes instancing the same triangle mesh: the second object's
	// face line must keep counting from the first one's vertices.
	doc := triangleDoc()
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        "copy",
		Mesh:        gltf.Index(0),
		Translation: [3]float64{5, 0, 0},
	})
	doc.Scenes[0].Nodes = []int{0, 1}

	payload := encodeGLB(t, doc)
	archive, _, err := converter.Convert(context.Background(), payload, "pair.glb")
	require.NoError(t, err)

	files := unzipAll(t, archive)
	obj := files["pair.obj"]
	assert.Contains(t, obj, "o root\nv 0 0 0\n")
	assert.Contains(t, obj, "f 1 2 3\n")
	assert.Contains(t, obj, "o copy\nv 5 0 0\n")
	assert.Contains(t, obj, "f 4 5 6\n")
}

func TestConvertEmptyPayload(t *testing.T) {
	t.Parallel()

	_, _, err := converter.Convert(context.Background(), nil, "model.glb")
	assert.ErrorIs(t, err, converter.ErrEmptyInput)
}

func TestConvertInvalidPayload(t *testing.T) {
	t.Parallel()

	_, _, err := converter.Convert(context.Background(), []byte("definitely not a glb"), "junk.glb")
	assert.ErrorIs(t, err, converter.ErrInvalidModel)
}

func TestConvertNoGeometry(t *testing.T) {
	t.Parallel()

	payload := encodeGLB(t, gltf.NewDocument())
	_, _, err := converter.Convert(context.Background(), payload, "empty.glb")
	assert.ErrorIs(t, err, converter.ErrNoArtifacts)
}

func TestConvertCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := encodeGLB(t, triangleDoc())
	_, _, err := converter.Convert(ctx, payload, "tri.glb")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain file", input: "scene.glb", expected: "scene"},
		{name: "nested unix path", input: "a/b/model.glb", expected: "model"},
		{name: "windows path", input: `C:\uploads\y.glb`, expected: "y"},
		{name: "empty", input: "", expected: "model"},
		{name: "no extension", input: "noext", expected: "noext"},
		{name: "double extension", input: "archive.tar.glb", expected: "archive.tar"},
		{name: "bare extension", input: ".glb", expected: ".glb"},
		{name: "trailing slash", input: "uploads/", expected: "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, converter.Stem(tt.input))
		})
	}
}
