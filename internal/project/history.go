package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/partquote/internal/model"
)

// MaxHistoryEntries bounds the stored quote history.
const MaxHistoryEntries = 200

// HistoryEntry is one priced quote.
type HistoryEntry struct {
	QuoteID   string        `json:"quote_id"`
	File      string        `json:"file"`
	Process   model.Process `json:"process"`
	Material  string        `json:"material"`
	Quantity  int           `json:"quantity"`
	UnitPrice float64       `json:"unit_price"`
	Total     float64       `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}

// QuoteHistory is the list of past quotes, newest first.
type QuoteHistory struct {
	Entries []HistoryEntry `json:"entries"`
}

// NewHistoryEntry records a breakdown for file.
func NewHistoryEntry(file string, b *model.PricingBreakdown) HistoryEntry {
	return HistoryEntry{
		QuoteID:   b.QuoteID,
		File:      file,
		Process:   b.Process,
		Material:  b.Material,
		Quantity:  b.Quantity,
		UnitPrice: b.UnitPrice,
		Total:     b.TotalPrice,
		CreatedAt: time.Now().UTC(),
	}
}

// Add prepends e, dropping the oldest entries beyond MaxHistoryEntries.
func (h *QuoteHistory) Add(e HistoryEntry) {
	h.Entries = append([]HistoryEntry{e}, h.Entries...)
	if len(h.Entries) > MaxHistoryEntries {
		h.Entries = h.Entries[:MaxHistoryEntries]
	}
}

// DefaultHistoryPath returns the default file path for the quote history.
// This is located at ~/.partquote/history.json.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultConfigDir(), "history.json")
}

// SaveHistory writes the history to a JSON file.
func SaveHistory(path string, h QuoteHistory) error {
	return writeJSON(path, h)
}

// LoadHistory reads the history from a JSON file.
// If the file does not exist, returns an empty history.
func LoadHistory(path string) (QuoteHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return QuoteHistory{Entries: []HistoryEntry{}}, nil
		}
		return QuoteHistory{}, err
	}
	var h QuoteHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return QuoteHistory{}, err
	}
	if h.Entries == nil {
		h.Entries = []HistoryEntry{}
	}
	return h, nil
}

// AppendHistory loads the history at path, adds e and saves it.
func AppendHistory(path string, e HistoryEntry) error {
	h, err := LoadHistory(path)
	if err != nil {
		return err
	}
	h.Add(e)
	return SaveHistory(path, h)
}
