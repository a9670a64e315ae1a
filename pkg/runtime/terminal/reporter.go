package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/bonus-atlas/pkg/models/api"
)

// Reporter outputs reports to the console in a plain text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) execute(name, tmpl string, data any) error {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

func (c *Reporter) Overview(year int, rows []api.SalonBonus) error {
	tmpl := `
Salon bonus overview {{.Year}}
{{range .Rows}}
=== {{.SalonName}} ({{.SalonID}}) ===
Turnover: {{printf "%.2f" .Turnover}}
Loyalty bonus: {{printf "%.2f" .LoyaltyBonus}}
Growth bonus: {{printf "%.2f" .GrowthBonus}}{{with .Growth}} (tier {{.Tier}}{{if .IsNewCustomer}}, new customer{{end}}){{end}}
Total bonus: {{printf "%.2f" .TotalBonus}}
{{range .Warnings}}- {{.}}
{{end}}{{end}}`
	return c.execute("overview", tmpl, struct {
		Year int
		Rows []api.SalonBonus
	}{year, rows})
}

func (c *Reporter) Detail(d api.SalonDetail) error {
	tmpl := `
{{.SalonName}} ({{.SalonID}}) {{.Year}}
{{with .Growth}}Growth: {{printf "%.2f" .PrevTurnover}} -> {{printf "%.2f" .CurrentTurnover}}, tier {{.Tier}}, bonus {{printf "%.2f" .BonusAmount}}
{{end}}{{range .Breakdown}}
- {{.SupplierID}} / {{.Brand}}: kjemi {{printf "%.2f" .Kjemi}}, produkt {{printf "%.2f" .Produkt}}, loyalty {{printf "%.2f" .LoyaltyBonus}}
{{end}}{{range .Warnings}}! {{.}}
{{end}}`
	return c.execute("detail", tmpl, d)
}

func (c *Reporter) Totals(t api.ChainTotals, suppliers []api.SupplierTotals, months []api.MonthlyTotals) error {
	tmpl := `
Chain totals {{.Totals.Year}}
Total turnover: {{printf "%.2f" .Totals.TotalTurnover}}
Previous year turnover: {{printf "%.2f" .Totals.PreviousYearTurnover}}
Loyalty bonus: {{printf "%.2f" .Totals.LoyaltyBonus}}
Growth bonus: {{printf "%.2f" .Totals.GrowthBonus}}
Total bonus: {{printf "%.2f" .Totals.TotalBonus}}
{{range .Suppliers}}
{{.SupplierName}}: {{printf "%.2f" .Turnover}} across {{.SalonCount}} salons
{{end}}{{range .Months}}
{{.Period}}: {{printf "%.2f" .Turnover}}
{{end}}`
	return c.execute("totals", tmpl, struct {
		Totals    api.ChainTotals
		Suppliers []api.SupplierTotals
		Months    []api.MonthlyTotals
	}{t, suppliers, months})
}
