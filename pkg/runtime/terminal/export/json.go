package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/bonus-atlas/pkg/models/api"
)

// JSONReporter writes the same views as Reporter using the HTTP response shapes.
type JSONReporter struct {
	writer io.Writer
}

func NewJSONReporter(writer io.Writer) *JSONReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONReporter{writer: writer}
}

func (j *JSONReporter) Overview(_ int, rows []api.SalonBonus) error {
	return j.encode(rows)
}

func (j *JSONReporter) Detail(d api.SalonDetail) error {
	return j.encode(d)
}

func (j *JSONReporter) Totals(t api.ChainTotals, suppliers []api.SupplierTotals, months []api.MonthlyTotals) error {
	return j.encode(struct {
		Totals     api.ChainTotals      `json:"totals"`
		BySupplier []api.SupplierTotals `json:"by_supplier"`
		Monthly    []api.MonthlyTotals  `json:"monthly"`
	}{t, suppliers, months})
}

func (j *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Marshal renders a full report bundle for export.
func Marshal(r api.Report) ([]byte, error) {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return body, nil
}
