package mesh_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/mesh"
	"github.com/piwi3910/partquote/internal/mesh/meshtest"
	"github.com/piwi3910/partquote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func box(x, y, z float64) []byte {
	return meshtest.Binary(meshtest.Box(r3.Vec{}, r3.Vec{X: x, Y: y, Z: z}))
}

func TestParseBinaryBox(t *testing.T) {
	m, err := mesh.Parse(box(10, 20, 30))
	require.NoError(t, err)

	assert.Equal(t, model.FormatBinary, m.Format)
	assert.Equal(t, 12, m.Len())
	assert.InDelta(t, 6000, m.Volume(), 1e-3)
	assert.InDelta(t, 2200, m.SurfaceArea(), 1e-3)

	size := m.Bounds().Size()
	assert.InDelta(t, 10, size.X, 1e-6)
	assert.InDelta(t, 20, size.Y, 1e-6)
	assert.InDelta(t, 30, size.Z, 1e-6)
}

func TestParseBinaryWithSolidHeader(t *testing.T) {
	var buf bytes.Buffer
	tris := meshtest.Box(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, mesh.EncodeBinary(&buf, "solid exported-by-cad", tris))

	m, err := mesh.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, model.FormatBinary, m.Format, "size match must win over the solid prefix")
	assert.Equal(t, "solid exported-by-cad", m.Name)
}

func TestParseText(t *testing.T) {
	data := meshtest.Text(meshtest.Box(r3.Vec{}, r3.Vec{X: 10, Y: 20, Z: 30}))

	m, err := mesh.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, model.FormatText, m.Format)
	assert.Equal(t, "fixture", m.Name)
	assert.Equal(t, 12, m.Len())
	assert.InDelta(t, 6000, m.Volume(), 1e-6)
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{
			name: "malformed vertex",
			data: "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 zero 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid x\n",
			line: 5,
		},
		{
			name: "missing coordinate",
			data: "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0\n",
			line: 4,
		},
		{
			name: "two vertices",
			data: "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid x\n",
			line: 7,
		},
		{
			name: "four vertices",
			data: "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 1 1 0\nvertex 0 1 0\nendloop\nendfacet\n",
			line: 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := mesh.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, m, "no partial geometry on error")

			var pe *mesh.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseTruncatedBinary(t *testing.T) {
	_, err := mesh.Parse([]byte("short"))
	var pe *mesh.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "header")

	data := box(1, 1, 1)
	_, err = mesh.Parse(data[:len(data)-10])
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "truncated triangle data")
}

func TestParseBinaryRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		offset int // byte offset of the corrupted float32
		value  float32
	}{
		{"nan first vertex", 84 + 12, float32(math.NaN())},
		{"inf last vertex of second triangle", 84 + 50 + 36 + 8, float32(math.Inf(1))},
		{"negative inf", 84 + 24 + 4, float32(math.Inf(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := box(10, 10, 10)
			binary.LittleEndian.PutUint32(data[tt.offset:], math.Float32bits(tt.value))

			m, err := mesh.Parse(data)
			assert.Nil(t, m)
			var pe *mesh.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Contains(t, pe.Reason, "non-finite")
			assert.LessOrEqual(t, pe.Offset, int64(tt.offset))
			assert.Greater(t, pe.Offset+12, int64(tt.offset))
		})
	}
}

func TestParseEmptyBinary(t *testing.T) {
	m, err := mesh.Parse(meshtest.Binary(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	s := mesh.Summarize(m, 0, model.DefaultThresholds().Mesh)
	assert.Equal(t, 0.0, s.Volume)
	assert.Equal(t, 0.0, s.SurfaceArea)
	assert.Equal(t, model.ComplexitySimple, s.Complexity)
	assert.Equal(t, 0.0, s.EstimatedMachiningTime)
	assert.Equal(t, 0.0, s.BoundingBox.X)
}

func TestParseFileUsesFileName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, mesh.EncodeBinary(&buf, "", meshtest.Plate(10, 10, 1)))
	path := filepath.Join(t.TempDir(), "bracket.stl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	m, err := mesh.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bracket", m.Name)

	_, err = mesh.ParseFile(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}

func TestSummarizeTextUsesBoundingBox(t *testing.T) {
	th := model.DefaultThresholds().Mesh
	m, err := mesh.Parse(meshtest.Text(meshtest.Box(r3.Vec{}, r3.Vec{X: 10, Y: 20, Z: 30})))
	require.NoError(t, err)

	s := mesh.Summarize(m, 2.7, th)
	assert.InDelta(t, 6000*th.TextFillFactor, s.Volume, 1e-6)
	assert.InDelta(t, 2200, s.SurfaceArea, 1e-6)
	assert.Equal(t, model.FormatText, s.Format)
}

func TestSummarizeComplexity(t *testing.T) {
	th := model.DefaultThresholds().Mesh

	plate, err := mesh.Parse(meshtest.Binary(meshtest.Plate(200, 150, 2)))
	require.NoError(t, err)
	assert.Equal(t, model.ComplexitySimple, mesh.Summarize(plate, 0, th).Complexity)

	cube, err := mesh.Parse(meshtest.Binary(meshtest.CubeWithHoles(50, 5, 5)))
	require.NoError(t, err)
	s := mesh.Summarize(cube, 0, th)
	assert.Equal(t, model.ComplexityModerate, s.Complexity)

	polygon := 0.5 * meshtest.HoleSegments * 25 * math.Sin(2*math.Pi/meshtest.HoleSegments)
	assert.InDelta(t, 125000-4*50*polygon, s.Volume, 1.0)

	assert.Equal(t, model.ComplexityComplex, mesh.ClassifyComplexity(25000, 1e6, 1e6, th))
	assert.Equal(t, model.ComplexityModerate, mesh.ClassifyComplexity(50, 1000, 100, th), "surface ratio 10")
}

func TestWeightAndMachiningTime(t *testing.T) {
	assert.InDelta(t, 27.0, mesh.Weight(10000, 2.7), 1e-9)

	th := model.DefaultThresholds().Mesh
	s := model.GeometrySummary{
		Volume:        1000,
		SurfaceArea:   1500,
		TriangleCount: 12,
		BoundingBox:   model.NewBoundingBox(model.Point3D{}, model.Point3D{X: 10, Y: 10, Z: 40}),
	}
	// 15 setup + 3000/3000 removal + 1500/1500 finishing
	assert.InDelta(t, 17.0, mesh.MachiningTime(s, th), 1e-9)
}
