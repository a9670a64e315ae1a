package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/bonus-atlas/pkg/models/api"
)

type TableConfig struct {
	IDWidth     int
	NameWidth   int
	AmountWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IDWidth:     12,
		NameWidth:   32,
		AmountWidth: 14,
	}
}

// Reporter renders reports as fixed-width tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(id, name string, amounts ...any) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s | %-*s |", c.config.IDWidth, id, c.config.NameWidth, truncate(name, c.config.NameWidth))
			for _, a := range amounts {
				switch v := a.(type) {
				case float64:
					fmt.Fprintf(&b, " %*.2f |", c.config.AmountWidth, v)
				default:
					fmt.Fprintf(&b, " %*v |", c.config.AmountWidth, v)
				}
			}
			return b.String()
		},
		"separator": func(amountColumns int) string {
			var b strings.Builder
			fmt.Fprintf(&b, "+%s+%s+",
				strings.Repeat("-", c.config.IDWidth+2),
				strings.Repeat("-", c.config.NameWidth+2))
			for i := 0; i < amountColumns; i++ {
				b.WriteString(strings.Repeat("-", c.config.AmountWidth+2))
				b.WriteString("+")
			}
			return b.String()
		},
	}
}

func (c *Reporter) render(name, tmpl string, data any) error {
	t, err := template.New(name).Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

func (c *Reporter) Overview(year int, rows []api.SalonBonus) error {
	tmpl := `
Salon bonus overview {{.Year}}

{{separator 4}}
{{formatRow "Salon" "Name" "Turnover" "Loyalty" "Growth" "Total"}}
{{separator 4}}
{{range .Rows}}{{formatRow .SalonID .SalonName .Turnover .LoyaltyBonus .GrowthBonus .TotalBonus}}
{{end}}{{separator 4}}
{{range .Rows}}{{$id := .SalonID}}{{range .Warnings}}! {{$id}}: {{.}}
{{end}}{{end}}`
	return c.render("overview", tmpl, struct {
		Year int
		Rows []api.SalonBonus
	}{year, rows})
}

func (c *Reporter) Detail(d api.SalonDetail) error {
	tmpl := `
{{.SalonName}} ({{.SalonID}}) {{.Year}}
{{with .Growth}}Growth: tier {{.Tier}}, {{printf "%.2f" .GrowthPercent}}% of {{printf "%.2f" .PrevTurnover}}, bonus {{printf "%.2f" .BonusAmount}}{{if .IsNewCustomer}} (new customer){{end}}
{{end}}Correction factor: {{printf "%.4f" .CorrectionFactor}}

{{separator 5}}
{{formatRow "Supplier" "Brand" "Kjemi" "Produkt" "Loyalty" "Prev year" "Trend %"}}
{{separator 5}}
{{range .Breakdown}}{{formatRow .SupplierID .Brand .Kjemi .Produkt .LoyaltyBonus .PrevYearTotal (trend .TrendPercent)}}
{{end}}{{separator 5}}
{{range .Warnings}}! {{.}}
{{end}}`
	t, err := template.New("detail").Funcs(c.funcMap()).Funcs(template.FuncMap{"trend": formatTrend}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, d)
}

func (c *Reporter) Totals(t api.ChainTotals, suppliers []api.SupplierTotals, months []api.MonthlyTotals) error {
	tmpl := `
Chain totals {{.Totals.Year}}
Turnover: {{printf "%.2f" .Totals.TotalTurnover}} (previous year {{printf "%.2f" .Totals.PreviousYearTurnover}})
Bonus: {{printf "%.2f" .Totals.TotalBonus}} (loyalty {{printf "%.2f" .Totals.LoyaltyBonus}}, growth {{printf "%.2f" .Totals.GrowthBonus}})

{{separator 3}}
{{formatRow "Supplier" "Name" "Turnover" "Loyalty" "Salons"}}
{{separator 3}}
{{range .Suppliers}}{{formatRow .SupplierID .SupplierName .Turnover .LoyaltyBonus .SalonCount}}
{{end}}{{separator 3}}

{{separator 2}}
{{formatRow "Period" "" "Turnover" "Loyalty"}}
{{separator 2}}
{{range .Months}}{{formatRow .Period "" .Turnover .LoyaltyBonus}}
{{end}}{{separator 2}}
`
	return c.render("totals", tmpl, struct {
		Totals    api.ChainTotals
		Suppliers []api.SupplierTotals
		Months    []api.MonthlyTotals
	}{t, suppliers, months})
}

func formatTrend(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
