package converter

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
)

// Convert decodes a binary glTF payload and returns a ZIP archive holding
// the generated artifacts, together with their archive-relative names in
// the order they were added: the OBJ file first, then the MTL file when
// the model references materials.
//
// filename is the upload's original name; its stem names the artifacts.
// Cancelling ctx aborts the conversion between meshes and surfaces the
// context's error unchanged.
func Convert(ctx context.Context, payload []byte, filename string) ([]byte, []string, error) {
	if len(payload) == 0 {
		return nil, nil, ErrEmptyInput
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(payload)).Decode(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	m, err := extract(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	if m.faceCount() == 0 {
		return nil, nil, ErrNoArtifacts
	}

	stem := Stem(filename)
	artifacts := []string{stem + ".obj"}
	contents := [][]byte{writeOBJ(m, stem+".mtl")}
	if len(m.materials) > 0 {
		artifacts = append(artifacts, stem+".mtl")
		contents = append(contents, writeMTL(m))
	}

	archive, err := packZip(artifacts, contents)
	if err != nil {
		return nil, nil, fmt.Errorf("packaging artifacts: %w", err)
	}
	return archive, artifacts, nil
}

// Stem returns the base name of filename without its final extension. It
// is used to name generated artifacts and download archives. Directory
// components in either separator style are stripped; names that reduce
// to nothing fall back to "model".
func Stem(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." || base == ".." {
		return "model"
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		return "model"
	}
	return base
}

// packZip writes the artifact files into an in-memory ZIP archive,
// preserving the given order.
func packZip(names []string, contents [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, name := range names {
		f, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(contents[i]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
