package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DataFetchError reports a failed request against the fact or override store.
type DataFetchError struct {
	Source string
	Page   int
	Offset int
	Err    error
}

func (e *DataFetchError) Error() string {
	if e.Source == "facts" {
		return fmt.Sprintf("fetch %s page %d (offset %d): %v", e.Source, e.Page, e.Offset, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

type ReferenceKind string

const (
	ReferenceSalon    ReferenceKind = "salon"
	ReferenceSupplier ReferenceKind = "supplier"
)

// MissingReferenceError is recorded when a fact points at an id absent from a directory.
type MissingReferenceError struct {
	Kind ReferenceKind
	ID   string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %q not found in directory", e.Kind, e.ID)
}

// IntegrityWarning flags a fact whose brand details do not add up to its total.
type IntegrityWarning struct {
	SalonID        string
	SupplierID     string
	Period         Period
	FactTurnover   decimal.Decimal
	DetailTurnover decimal.Decimal
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("salon %s supplier %s %s: detail turnover %s does not match fact turnover %s",
		w.SalonID, w.SupplierID, w.Period, w.DetailTurnover.String(), w.FactTurnover.String())
}

// Difference is fact minus detail turnover.
func (w *IntegrityWarning) Difference() decimal.Decimal {
	return w.FactTurnover.Sub(w.DetailTurnover)
}
