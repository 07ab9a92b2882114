package project

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/partquote/internal/model"
)

func TestAppendAndLoadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	first := &model.PricingBreakdown{QuoteID: "q1", Process: model.ProcessMilling, Material: "AL6061", Quantity: 1, UnitPrice: 120, TotalPrice: 120}
	second := &model.PricingBreakdown{QuoteID: "q2", Process: model.ProcessSheetMetal, Material: "SS304", Quantity: 50, UnitPrice: 8, TotalPrice: 400}

	if err := AppendHistory(path, NewHistoryEntry("bracket.stl", first)); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if err := AppendHistory(path, NewHistoryEntry("panel.dxf", second)); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	h, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(h.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h.Entries))
	}
	if h.Entries[0].QuoteID != "q2" || h.Entries[0].File != "panel.dxf" {
		t.Errorf("newest entry should be first, got %+v", h.Entries[0])
	}
	if h.Entries[1].Total != 120 {
		t.Errorf("expected total 120, got %f", h.Entries[1].Total)
	}
	if h.Entries[0].CreatedAt.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestLoadHistory_NotFound(t *testing.T) {
	h, err := LoadHistory(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.Entries == nil || len(h.Entries) != 0 {
		t.Errorf("expected empty history, got %v", h.Entries)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	var h QuoteHistory
	for i := 0; i < MaxHistoryEntries+5; i++ {
		h.Add(HistoryEntry{QuoteID: fmt.Sprintf("q%d", i)})
	}
	if len(h.Entries) != MaxHistoryEntries {
		t.Fatalf("expected %d entries, got %d", MaxHistoryEntries, len(h.Entries))
	}
	if h.Entries[0].QuoteID != fmt.Sprintf("q%d", MaxHistoryEntries+4) {
		t.Errorf("newest entry should be first, got %s", h.Entries[0].QuoteID)
	}
}
