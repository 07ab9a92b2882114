package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/piwi3910/partquote/internal/geometry"
)

// binaryTri is the on-disk layout of one binary STL triangle.
type binaryTri struct {
	N, V1, V2, V3 [3]float32
	_             uint16 // unused attribute byte count
}

// EncodeBinary writes triangles as a binary STL.
func EncodeBinary(w io.Writer, name string, triangles []geometry.Triangle) error {
	var header [headerSize]byte
	copy(header[:], name)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return fmt.Errorf("error writing triangle count: %w", err)
	}
	for i, t := range triangles {
		n := t.Normal()
		rec := binaryTri{
			N:  [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
			V1: [3]float32{float32(t.V1.X), float32(t.V1.Y), float32(t.V1.Z)},
			V2: [3]float32{float32(t.V2.X), float32(t.V2.Y), float32(t.V2.Z)},
			V3: [3]float32{float32(t.V3.X), float32(t.V3.Y), float32(t.V3.Z)},
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("error writing triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// EncodeText writes triangles as a text STL.
func EncodeText(w io.Writer, name string, triangles []geometry.Triangle) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range triangles {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range t.Vertices() {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
