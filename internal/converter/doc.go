// Package converter turns binary glTF (GLB) payloads into Wavefront OBJ
// artifacts. It decodes the document, walks the scene graph applying node
// transforms, triangulates every renderable primitive, and packages the
// resulting OBJ file (plus an MTL file when materials are present) into a
// ZIP archive held entirely in memory.
//
// The conversion is pure computation: it takes bytes in and hands bytes
// back, touching neither the filesystem nor the network. Long-running
// conversions honor context cancellation between meshes on a best-effort
// basis.
package converter
