package domain

import (
	"errors"
	"fmt"
	"slices"
)

// FactFilter narrows a fact query. From and To are inclusive and required.
type FactFilter struct {
	From        Period
	To          Period
	SupplierIDs []string
	SalonIDs    []string
}

func YearFilter(year int, supplierIDs ...string) FactFilter {
	from, to := YearRange(year)
	return FactFilter{From: from, To: to, SupplierIDs: supplierIDs}
}

func (f FactFilter) Validate() error {
	if f.From.IsZero() || f.To.IsZero() {
		return errors.New("fact filter requires both period bounds")
	}
	if f.To.Before(f.From) {
		return fmt.Errorf("invalid period range: %s is after %s", f.From, f.To)
	}
	return nil
}

// WithSalon returns a copy of the filter restricted to a single salon.
func (f FactFilter) WithSalon(salonID string) FactFilter {
	f.SalonIDs = []string{salonID}
	f.SupplierIDs = slices.Clone(f.SupplierIDs)
	return f
}

// PreviousYear shifts both bounds back one year, keeping the restrictions.
func (f FactFilter) PreviousYear() FactFilter {
	return FactFilter{
		From:        f.From.PreviousYear(),
		To:          f.To.PreviousYear(),
		SupplierIDs: slices.Clone(f.SupplierIDs),
		SalonIDs:    slices.Clone(f.SalonIDs),
	}
}

// IncludesSupplier reports whether the supplier passes the filter. An empty
// supplier list matches everything.
func (f FactFilter) IncludesSupplier(supplierID string) bool {
	return len(f.SupplierIDs) == 0 || slices.Contains(f.SupplierIDs, supplierID)
}
