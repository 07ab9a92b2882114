package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[rune]string{
		',':  "File,Material,Qty\nbracket.stl,AL6061,10\nshaft.stl,SS304,2\n",
		';':  "File;Material;Qty\nbracket.stl;AL6061;10\nshaft.stl;SS304;2\n",
		'\t': "File\tMaterial\tQty\nbracket.stl\tAL6061\t10\nshaft.stl\tSS304\t2\n",
		'|':  "File|Material|Qty\nbracket.stl|AL6061|10\nshaft.stl|SS304|2\n",
	}
	for want, data := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Qty", "Surface", "PATH", "Alloy", "Lead Time", "Tol"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.File != 2 || mapping.Material != 3 || mapping.Quantity != 0 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Finish != 1 || mapping.LeadTime != 4 || mapping.Tolerance != 5 {
		t.Errorf("unexpected optional mapping %+v", mapping)
	}
	if mapping.Process != -1 {
		t.Errorf("expected no process column, got %d", mapping.Process)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"bracket.stl", "AL6061", "10"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.File != 0 || mapping.Quantity != 2 || mapping.Process != 6 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "File,Material,Quantity,Finish,Tolerance,Lead Time,Process\n" +
		"bracket.stl,AL6061,10,anodize,precision,rush,sheet\n" +
		"shaft.step,SS304,,,,,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	r := result.Requests[0]
	if r.File != "bracket.stl" || r.Material != "AL6061" || r.Quantity != 10 || r.Finish != "anodize" {
		t.Errorf("unexpected request %+v", r)
	}
	if r.Tolerance != "precision" || r.LeadTime != "expedited" || r.Process != "sheet-metal" {
		t.Errorf("expected normalized enums, got %+v", r)
	}
	if result.Requests[1].Quantity != 1 {
		t.Errorf("empty quantity should default to 1, got %d", result.Requests[1].Quantity)
	}
}

func TestImportCSVFromReader_UnknownEnumsWarn(t *testing.T) {
	data := "file,qty,tolerance,process\npart.stl,3,loose,forging\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d (errors: %v)", len(result.Requests), result.Errors)
	}
	if result.Requests[0].Tolerance != "" || result.Requests[0].Process != "" {
		t.Errorf("unknown values should be left empty, got %+v", result.Requests[0])
	}
	var warned int
	for _, w := range result.Warnings {
		if strings.Contains(w, "Unknown") {
			warned++
		}
	}
	if warned != 2 {
		t.Errorf("expected 2 unknown-value warnings, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	data := "file,qty\npart.stl,abc\n,4\nother.stl,-2\ngood.stl,2.0\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", result.Errors)
	}
	if len(result.Requests) != 1 || result.Requests[0].Quantity != 2 {
		t.Errorf("expected the integral float quantity to parse, got %+v", result.Requests)
	}
}

func TestImportCSVFromReader_MissingFileColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("material,qty\nAL6061,2\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "File") {
		t.Errorf("expected missing file column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyAndBlankRows(t *testing.T) {
	if r := ImportCSVFromReader(strings.NewReader(""), ','); len(r.Errors) == 0 {
		t.Error("expected error for empty input")
	}
	r := ImportCSVFromReader(strings.NewReader("file,qty\n,\n a.stl ,1\n\n"), ',')
	if len(r.Requests) != 1 || r.Requests[0].File != "a.stl" {
		t.Errorf("expected one trimmed request, got %+v (errors %v)", r.Requests, r.Errors)
	}
}

func TestImportCSV_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	abs := filepath.Join(dir, "abs.stl")
	content := "file;qty\nparts/a.stl;1\n" + abs + ";2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d (errors %v)", len(result.Requests), result.Errors)
	}
	if want := filepath.Join(dir, "parts", "a.stl"); result.Requests[0].File != want {
		t.Errorf("expected %s, got %s", want, result.Requests[0].File)
	}
	if result.Requests[1].File != abs {
		t.Errorf("absolute path changed: %s", result.Requests[1].File)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"File", "Material", "Qty", "Finish"},
		{"bracket.stl", "AL6061", 25, "anodize"},
		{"cover.dxf", "ST1018", 100, ""},
	})

	result := ImportSheet(path)
	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if result.Requests[1].Quantity != 100 || result.Requests[1].Material != "ST1018" {
		t.Errorf("unexpected request %+v", result.Requests[1])
	}
	if !filepath.IsAbs(result.Requests[0].File) {
		t.Errorf("expected resolved path, got %s", result.Requests[0].File)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── DXF Profile Tests ─────────────────────────────────────

func writeDXF(t *testing.T, build func(add func(x1, y1, x2, y2 float64), circle func(x, y, r float64))) string {
	t.Helper()
	d := dxf.NewDrawing()
	add := func(x1, y1, x2, y2 float64) {
		if _, err := d.Line(x1, y1, 0, x2, y2, 0); err != nil {
			t.Fatal(err)
		}
	}
	circle := func(x, y, r float64) {
		if _, err := d.Circle(x, y, 0, r); err != nil {
			t.Fatal(err)
		}
	}
	build(add, circle)
	path := filepath.Join(t.TempDir(), "profile.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func rectangle(add func(x1, y1, x2, y2 float64), x, y, w, h float64) {
	add(x, y, x+w, y)
	add(x+w, y, x+w, y+h)
	add(x+w, y+h, x, y+h)
	add(x, y+h, x, y)
}

func TestImportProfile_PlateWithHoles(t *testing.T) {
	path := writeDXF(t, func(add func(x1, y1, x2, y2 float64), circle func(x, y, r float64)) {
		rectangle(add, 10, 20, 200, 100)
		circle(40, 50, 5)
		circle(180, 90, 5)
		rectangle(add, 500, 500, 10, 10)
	})

	result := ImportProfile(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	p := result.Profile
	if p.Width != 100 || p.Length != 200 {
		t.Errorf("expected 100x200 profile, got %.2fx%.2f", p.Width, p.Length)
	}
	if len(p.HoleDiameters) != 2 || p.HoleDiameters[0] != 10 {
		t.Errorf("expected two 10 mm holes, got %v", p.HoleDiameters)
	}
	if len(p.Cutouts) != 2 {
		t.Errorf("expected 2 cutouts, got %d", len(p.Cutouts))
	}
	if p.Area >= 20000 || p.Area < 19800 {
		t.Errorf("area should subtract the holes, got %.1f", p.Area)
	}
	if p.CutLength <= 600 {
		t.Errorf("cut length should include hole perimeters, got %.1f", p.CutLength)
	}
	if min, _ := p.Outer.BoundingBox(); min.X != 0 || min.Y != 0 {
		t.Errorf("outer outline should be normalized, got min %v", min)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected a warning for the stray square, got %v", result.Warnings)
	}
}

func TestImportProfile_OpenChainIsNotAShape(t *testing.T) {
	path := writeDXF(t, func(add func(x1, y1, x2, y2 float64), _ func(x, y, r float64)) {
		add(0, 0, 100, 0)
		add(100, 0, 100, 50)
	})
	result := ImportProfile(path)
	if len(result.Errors) == 0 || result.Profile != nil {
		t.Errorf("expected no closed shape error, got %+v", result)
	}
}

func TestImportProfile_MissingFile(t *testing.T) {
	result := ImportProfile(filepath.Join(t.TempDir(), "none.dxf"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportExcel_SkipsEmptySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.xlsx")
	f := excelize.NewFile()
	if _, err := f.NewSheet("Parts"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Part", "Alloy", "Pcs"},
		{"bracket.stl", "AL6061", 4},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Parts", cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 1 || result.Requests[0].Quantity != 4 {
		t.Fatalf("unexpected requests %+v", result.Requests)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "Parts") {
		t.Errorf("expected sheet warning first, got %v", result.Warnings)
	}
}
