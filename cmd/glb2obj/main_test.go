package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTriangleGLB drops a minimal one-triangle binary glTF model at path.
func writeTriangleGLB(t *testing.T, path string) {
	t.Helper()

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

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRunConvertsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, filepath.Join(dir, "tri.glb"))
	writeTriangleGLB(t, filepath.Join(dir, "other.glb"))

	var out bytes.Buffer
	st, err := run(context.Background(), options{input: dir}, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, st.converted)
	assert.Equal(t, 0, st.skipped)
	assert.Equal(t, 0, st.failed)

	assert.FileExists(t, filepath.Join(dir, "tri.obj"))
	assert.FileExists(t, filepath.Join(dir, "other.obj"))
	assert.Contains(t, out.String(), "converted 2, skipped 0, failed 0")
}

func TestRunSkipsExistingArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, filepath.Join(dir, "tri.glb"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte("stale"), 0o644))

	var out bytes.Buffer
	st, err := run(context.Background(), options{input: dir}, &out)
	require.NoError(t, err)

	assert.Equal(t, 0, st.converted)
	assert.Equal(t, 1, st.skipped)

	// Existing output untouched
	data, err := os.ReadFile(filepath.Join(dir, "tri.obj"))
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data))
}

func TestRunOverwriteRegenerates(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, filepath.Join(dir, "tri.glb"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte("stale"), 0o644))

	var out bytes.Buffer
	st, err := run(context.Background(), options{input: dir, overwrite: true}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, st.converted)
	assert.Equal(t, 0, st.skipped)

	data, err := os.ReadFile(filepath.Join(dir, "tri.obj"))
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(data))
	assert.Contains(t, string(data), "v 0 0 0")
}

func TestRunCountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLB(t, filepath.Join(dir, "good.glb"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.glb"), []byte("not a gltf"), 0o644))

	var out bytes.Buffer
	st, err := run(context.Background(), options{input: dir}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, st.converted)
	assert.Equal(t, 1, st.failed)
	assert.Contains(t, out.String(), "failed")
}

func TestRunSeparateOutputDirectory(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "artifacts")
	writeTriangleGLB(t, filepath.Join(srcDir, "tri.glb"))

	var out bytes.Buffer
	st, err := run(context.Background(), options{input: srcDir, output: outDir}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, st.converted)
	assert.FileExists(t, filepath.Join(outDir, "tri.obj"))
	assert.NoFileExists(t, filepath.Join(srcDir, "tri.obj"))
}

func TestRunErrorsWhenNothingFound(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	_, err := run(context.Background(), options{input: dir}, &out)
	assert.Error(t, err)
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	writeTriangleGLB(t, filepath.Join(dir, "top.glb"))
	writeTriangleGLB(t, filepath.Join(sub, "deep.glb"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o644))

	t.Run("flat", func(t *testing.T) {
		inputs, err := collectInputs(dir, false)
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, filepath.Join(dir, "top.glb"), inputs[0])
	})

	t.Run("recursive", func(t *testing.T) {
		inputs, err := collectInputs(dir, true)
		require.NoError(t, err)
		assert.Len(t, inputs, 2)
	})

	t.Run("single_file", func(t *testing.T) {
		inputs, err := collectInputs(filepath.Join(dir, "top.glb"), false)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "top.glb")}, inputs)
	})

	t.Run("missing_input", func(t *testing.T) {
		_, err := collectInputs(filepath.Join(dir, "absent"), false)
		assert.Error(t, err)
	})
}

func TestParseFlags(t *testing.T) {
	opts := parseFlags([]string{
		"-input", "models",
		"-output", "artifacts",
		"-recursive",
		"-overwrite",
		"-quiet",
	})

	assert.Equal(t, "models", opts.input)
	assert.Equal(t, "artifacts", opts.output)
	assert.True(t, opts.recursive)
	assert.True(t, opts.overwrite)
	assert.True(t, opts.quiet)
}
