package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/partquote/internal/geometry"
	"github.com/piwi3910/partquote/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	headerSize     = 80
	countSize      = 4
	triangleRecord = 50 // normal, 3 vertices, attribute byte count
)

// ParseError reports malformed or truncated mesh data. Line is set for text
// input, Offset for binary input.
type ParseError struct {
	Line   int
	Offset int64
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mesh parse error at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("mesh parse error at byte %d: %s", e.Offset, e.Reason)
}

// ParseFile reads and parses a mesh file. The file name becomes the mesh
// name when the file carries none.
func ParseFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh data: %w", err)
	}
	return Parse(data)
}

// Parse decodes binary or text STL data. A buffer whose length matches the
// binary layout for its declared triangle count is binary even when its
// header starts with "solid", which many exporters write.
func Parse(data []byte) (*Mesh, error) {
	if IsBinary(data) {
		return parseBinary(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseText(data)
	}
	return parseBinary(data)
}

// IsBinary reports whether data has the exact size of a binary STL.
func IsBinary(data []byte) bool {
	if len(data) < headerSize+countSize {
		return false
	}
	count := binary.LittleEndian.Uint32(data[headerSize:])
	return int64(len(data)) == int64(headerSize+countSize)+int64(count)*triangleRecord
}

func parseBinary(data []byte) (*Mesh, error) {
	if len(data) < headerSize+countSize {
		return nil, &ParseError{Offset: int64(len(data)), Reason: "truncated header"}
	}

	name := strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00")))
	count := binary.LittleEndian.Uint32(data[headerSize:])

	need := int64(headerSize+countSize) + int64(count)*triangleRecord
	if int64(len(data)) < need {
		return nil, &ParseError{
			Offset: int64(len(data)),
			Reason: fmt.Sprintf("truncated triangle data: %d triangles declared, %d bytes short", count, need-int64(len(data))),
		}
	}

	triangles := make([]geometry.Triangle, 0, count)
	off := headerSize + countSize
	for i := uint32(0); i < count; i++ {
		// Skip the stored normal; it is recomputed from the winding.
		var v [3]r3.Vec
		for k := range v {
			at := off + 12 + 12*k
			v[k] = readVec(data[at:])
			if !finite(v[k]) {
				return nil, &ParseError{Offset: int64(at), Reason: fmt.Sprintf("non-finite coordinate in triangle %d", i)}
			}
		}
		triangles = append(triangles, geometry.NewTriangle(v[0], v[1], v[2]))
		off += triangleRecord
	}

	return NewMesh(name, model.FormatBinary, triangles), nil
}

func readVec(b []byte) r3.Vec {
	return r3.Vec{
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	}
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func parseText(data []byte) (*Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		name      string
		triangles []geometry.Triangle
		vertices  []r3.Vec
		inFacet   bool
		lineNo    int
	)

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 && name == "" {
				name = strings.Join(fields[1:], " ")
			}

		case "facet":
			inFacet = true
			vertices = vertices[:0]

		case "vertex":
			if len(fields) != 4 {
				return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("vertex needs 3 coordinates, got %d", len(fields)-1)}
			}
			var c [3]float64
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("invalid coordinate %q", fields[i+1])}
				}
				c[i] = v
			}
			vertices = append(vertices, r3.Vec{X: c[0], Y: c[1], Z: c[2]})

		case "endfacet":
			if !inFacet {
				return nil, &ParseError{Line: lineNo, Reason: "endfacet without facet"}
			}
			if len(vertices) != 3 {
				return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("facet has %d vertices, want 3", len(vertices))}
			}
			triangles = append(triangles, geometry.NewTriangle(vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
			inFacet = false
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNo, Reason: err.Error()}
	}
	if inFacet {
		return nil, &ParseError{Line: lineNo, Reason: "unterminated facet"}
	}

	return NewMesh(name, model.FormatText, triangles), nil
}
