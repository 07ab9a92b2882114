package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
)

func buildLabelsTestResults() []model.QuoteResult {
	manual := buildTestBreakdown()
	manual.QuoteID = "q-manual"
	manual.RequiresManualQuote = true

	return []model.QuoteResult{
		{
			Request:   model.QuoteRequest{File: "parts/bracket.stl"},
			Geometry:  buildTestGeometry(),
			Breakdown: buildTestBreakdown(),
		},
		{
			Request: model.QuoteRequest{File: "parts/broken.stl"},
			Error:   "truncated triangle data",
		},
		{
			Request:   model.QuoteRequest{File: "parts/foil.step"},
			Breakdown: manual,
		},
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildLabelsTestResults()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportLabels_NothingPriced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportLabels(path, []model.QuoteResult{{Request: model.QuoteRequest{File: "x.stl"}, Error: "boom"}})
	if !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
	if err := ExportLabels(path, nil); err == nil {
		t.Fatal("expected error for no results")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildLabelsTestResults())

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Part != "bracket.stl" {
		t.Errorf("expected geometry name, got %q", labels[0].Part)
	}
	if labels[0].Quantity != 10 || labels[0].LeadDays != 8 {
		t.Errorf("unexpected label %+v", labels[0])
	}
	if labels[1].Part != "parts/foil.step" {
		t.Errorf("expected request file without geometry, got %q", labels[1].Part)
	}
	if !labels[1].Manual {
		t.Error("expected second label flagged for manual review")
	}
}

func TestLabelInfo_QRPayload(t *testing.T) {
	info := CollectLabelInfos(buildLabelsTestResults())[0]

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"quote_id", "part", "process", "material", "qty", "unit_price", "lead_days"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("QR payload misses %q", key)
		}
	}
	if _, ok := fields["manual"]; ok {
		t.Error("manual flag should be omitted when false")
	}
}

func TestExportLabels_ManyQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 labels spill onto a second page.
	results := make([]model.QuoteResult, 35)
	for i := range results {
		b := buildTestBreakdown()
		b.QuoteID = fmt.Sprintf("q-%02d", i)
		results[i] = model.QuoteResult{Request: model.QuoteRequest{File: fmt.Sprintf("part-%02d.stl", i)}, Breakdown: b}
	}

	if err := ExportLabels(path, results); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestLabelSheetCells(t *testing.T) {
	s := avery5160

	x, y, newPage := s.cell(0)
	if !newPage || x != s.left || y != s.top {
		t.Errorf("first cell = (%v, %v, %v)", x, y, newPage)
	}
	x, y, newPage = s.cell(4)
	if newPage || x != s.left+s.width || y != s.top+s.height {
		t.Errorf("cell 4 = (%v, %v, %v)", x, y, newPage)
	}
	if _, _, newPage = s.cell(30); !newPage {
		t.Error("label 30 should start the second page")
	}
}
