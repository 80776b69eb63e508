package converter

import (
	"bytes"
	"strconv"
)

// writeOBJ renders the extracted model as a Wavefront OBJ document.
// Vertex, texcoord and normal indices are global and 1-based across the
// whole file, so every face line references the running totals of all
// previously written attribute blocks.
func writeOBJ(m *model, mtlName string) []byte {
	var b bytes.Buffer
	if len(m.materials) > 0 {
		b.WriteString("mtllib ")
		b.WriteString(mtlName)
		b.WriteByte('\n')
	}

	vBase, vtBase, vnBase := 1, 1, 1
	for _, obj := range m.objects {
		b.WriteString("o ")
		b.WriteString(obj.name)
		b.WriteByte('\n')

		for _, prim := range obj.prims {
			for i, pos := range prim.positions {
				b.WriteString("v ")
				writeFloat(&b, pos[0])
				b.WriteByte(' ')
				writeFloat(&b, pos[1])
				b.WriteByte(' ')
				writeFloat(&b, pos[2])
				if prim.colors != nil {
					c := prim.colors[i]
					b.WriteByte(' ')
					writeFloat(&b, c[0])
					b.WriteByte(' ')
					writeFloat(&b, c[1])
					b.WriteByte(' ')
					writeFloat(&b, c[2])
				}
				b.WriteByte('\n')
			}
			for _, uv := range prim.texcoords {
				b.WriteString("vt ")
				writeFloat(&b, uv[0])
				b.WriteByte(' ')
				writeFloat(&b, uv[1])
				b.WriteByte('\n')
			}
			for _, n := range prim.normals {
				b.WriteString("vn ")
				writeFloat(&b, n[0])
				b.WriteByte(' ')
				writeFloat(&b, n[1])
				b.WriteByte(' ')
				writeFloat(&b, n[2])
				b.WriteByte('\n')
			}

			if prim.material >= 0 {
				b.WriteString("usemtl ")
				b.WriteString(m.materials[prim.material].name)
				b.WriteByte('\n')
			}

			hasVT := len(prim.texcoords) > 0
			hasVN := len(prim.normals) > 0
			for _, f := range prim.faces {
				b.WriteByte('f')
				for _, v := range f {
					b.WriteByte(' ')
					writeFaceRef(&b, vBase+v, vtBase+v, vnBase+v, hasVT, hasVN)
				}
				b.WriteByte('\n')
			}

			vBase += len(prim.positions)
			vtBase += len(prim.texcoords)
			vnBase += len(prim.normals)
		}
	}
	return b.Bytes()
}

// writeMTL renders the referenced materials as an MTL companion file.
func writeMTL(m *model) []byte {
	var b bytes.Buffer
	for i, mat := range m.materials {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("newmtl ")
		b.WriteString(mat.name)
		b.WriteByte('\n')

		b.WriteString("Kd ")
		writeFloat64(&b, mat.diffuse[0])
		b.WriteByte(' ')
		writeFloat64(&b, mat.diffuse[1])
		b.WriteByte(' ')
		writeFloat64(&b, mat.diffuse[2])
		b.WriteByte('\n')

		b.WriteString("d ")
		writeFloat64(&b, mat.alpha)
		b.WriteByte('\n')

		if mat.emissive != ([3]float64{}) {
			b.WriteString("Ke ")
			writeFloat64(&b, mat.emissive[0])
			b.WriteByte(' ')
			writeFloat64(&b, mat.emissive[1])
			b.WriteByte(' ')
			writeFloat64(&b, mat.emissive[2])
			b.WriteByte('\n')
		}
	}
	return b.Bytes()
}

// writeFaceRef writes one face corner in the densest OBJ reference form
// the primitive's attributes allow: v, v/vt, v//vn or v/vt/vn.
func writeFaceRef(b *bytes.Buffer, v, vt, vn int, hasVT, hasVN bool) {
	b.WriteString(strconv.Itoa(v))
	switch {
	case hasVT && hasVN:
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(vt))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(vn))
	case hasVT:
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(vt))
	case hasVN:
		b.WriteString("//")
		b.WriteString(strconv.Itoa(vn))
	}
}

func writeFloat(b *bytes.Buffer, v float32) {
	b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
}

func writeFloat64(b *bytes.Buffer, v float64) {
	b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}
