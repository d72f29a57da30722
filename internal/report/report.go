// Package report renders the portfolio analytics as an XLSX workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/money"
	"github.com/stwalsh4118/landledger/internal/portfolio"
)

// Sheet names, in workbook order.
const (
	SheetSummary       = "Summary"
	SheetInvestors     = "Investors"
	SheetPayments      = "Payments"
	SheetProfitPerYear = "Profit per year"
	SheetStrategies    = "Strategies"
	SheetAssessment    = "Assessment"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// Data is everything the workbook shows.
type Data struct {
	GeneratedAt time.Time
	FXRate      float64
	Summary     portfolio.Summary
	Payments    []portfolio.Payment
	Rollup      portfolio.Rollup
	Strategies  []portfolio.StrategySummary
	KeyFigures  portfolio.KeyFigures
	Assessments []portfolio.Assessment
}

// Filename is the download name for a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("portfolio-%s.xlsx", dates.Format(t))
}

// Generate builds the workbook and returns its bytes.
func Generate(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &writer{f: f, header: header}
	w.summary(data)
	w.investors(data)
	w.payments(data)
	w.profitPerYear(data)
	w.strategies(data)
	w.assessment(data)
	if w.err != nil {
		return nil, w.err
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to locate summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writer appends rows sheet by sheet and remembers the first error.
type writer struct {
	f      *excelize.File
	header int
	sheet  string
	row    int
	err    error
}

func (w *writer) newSheet(name string, columns ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("failed to create sheet %q: %w", name, err)
		return
	}
	w.sheet = name
	w.row = 0
	w.headerRow(columns...)
	if w.err == nil {
		w.err = w.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
}

func (w *writer) headerRow(columns ...interface{}) {
	w.append(columns...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(max(len(columns), 1), w.row)
	if err != nil {
		w.err = err
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, w.row)
	if err := w.f.SetCellStyle(w.sheet, first, last, w.header); err != nil {
		w.err = fmt.Errorf("failed to style %s!%s: %w", w.sheet, first, err)
	}
}

func (w *writer) append(values ...interface{}) {
	if w.err != nil {
		return
	}
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write %s!%s: %w", w.sheet, cell, err)
	}
}

func (w *writer) blank() {
	w.row++
}

// optional turns a missing converted amount into an empty cell.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (w *writer) summary(data Data) {
	w.newSheet(SheetSummary,
		"Location", "Deal stage", "Strategy", "Path", "Months",
		"Purchase price", "Sale value", "Total principal", "Total interest",
		"Appreciation", "Net profit", "Net profit ("+money.SecondaryCurrency+")", "Net profit (display)",
	)
	for _, r := range data.Summary.Results {
		w.append(r.Location, r.DealStage.Label(), string(r.Strategy), string(r.Path), r.MonthsElapsed,
			r.PurchasePrice, r.SaleValue, r.TotalPrincipal, r.TotalInterest,
			r.Appreciation, r.NetProfit, optional(r.NetProfitSecondary), money.Format(r.NetProfit, money.PrimaryCurrency),
		)
	}

	t := data.Summary.Totals
	w.blank()
	w.append("Total", nil, nil, nil, nil,
		nil, t.SaleValue, t.TotalPrincipal, t.TotalInterest,
		nil, t.NetProfit, optional(t.NetProfitSecondary), money.Format(t.NetProfit, money.PrimaryCurrency),
	)

	w.blank()
	w.append("Generated", dates.Format(data.GeneratedAt))
	if money.RateAvailable(data.FXRate) {
		w.append("Exchange rate", data.FXRate, money.SecondaryCurrency+"/"+money.PrimaryCurrency)
	} else {
		w.append("Exchange rate", "unavailable")
	}
	w.append("Parcels", data.KeyFigures.ParcelCount)
	w.append("Total area (m²)", data.KeyFigures.TotalAreaM2)

	if len(data.Summary.Skipped) > 0 {
		w.blank()
		w.append("Not valued", "Deal stage", "Reason")
		for _, s := range data.Summary.Skipped {
			w.append(s.Location, s.DealStage.Label(), s.Reason)
		}
	}
}

func (w *writer) investors(data Data) {
	w.newSheet(SheetInvestors,
		"Location", "Investor", "Rate basis", "Interest rate", "Principal",
		"Accrued interest", "Capital cost", "Capital cost ("+money.SecondaryCurrency+")",
		"Profit share %", "Profit share", "Profit share ("+money.SecondaryCurrency+")", "Total payout",
	)
	for _, r := range data.Summary.Results {
		for _, inv := range r.Investors {
			w.append(r.Location, inv.Name, string(inv.RateBasis), inv.InterestRate, inv.Principal,
				inv.AccruedInterest, inv.CapitalCost, optional(inv.CapitalCostSecondary),
				inv.ProfitSharePct, inv.ProfitShareAmount, optional(inv.ProfitShareSecondary), inv.TotalPayout,
			)
		}
	}
}

func (w *writer) payments(data Data) {
	w.newSheet(SheetPayments,
		"Location", "Investor", "Rate basis", "Start date", "Next payment date",
		"Next payment", "Accrued to date", "Currency", "Next payment (display)",
	)
	for _, p := range data.Payments {
		code := p.Currency
		if code == "" {
			code = money.SecondaryCurrency
		}
		w.append(p.Location, p.Investor, string(p.RateBasis), dates.Format(p.StartDate), dates.Format(p.NextPaymentDate),
			p.NextPaymentAmount, p.AccruedToDate, code, money.Format(p.NextPaymentAmount, code),
		)
	}
}

func (w *writer) profitPerYear(data Data) {
	w.newSheet(SheetProfitPerYear, "Year", "Profit", "Avg profit per year", "Avg return %")
	for _, y := range data.Rollup.Years {
		w.append(y.Year, y.Profit, y.AvgProfitPerYear, y.AvgReturnPct)
	}

	w.blank()
	w.headerRow("Year", "Month", "Profit")
	for _, m := range data.Rollup.Months {
		w.append(m.Year, m.Month.String(), m.Profit)
	}

	w.blank()
	w.headerRow("Location", "Strategy", "Sold", "Start", "End", "Revenue", "Cost", "Purchase",
		"Total profit", "Duration (years)", "Profit per year", "Return % per year")
	for _, p := range data.Rollup.Parcels {
		w.append(p.Location, string(p.Strategy), p.Sold, dates.Format(p.Start), dates.Format(p.End), p.Revenue, p.Cost, p.Purchase,
			p.TotalProfit, p.DurationYears, p.ProfitPerYear, p.ReturnPctPerYear)
	}
}

func (w *writer) strategies(data Data) {
	w.newSheet(SheetStrategies, "Strategy", "Parcels", "Expected revenue", "Expected cost", "Expected profit")
	var count int
	var revenue, cost, profit []float64
	for _, s := range data.Strategies {
		w.append(string(s.Strategy), s.Count, s.Revenue, s.Cost, s.Profit)
		count += s.Count
		revenue = append(revenue, s.Revenue)
		cost = append(cost, s.Cost)
		profit = append(profit, s.Profit)
	}
	w.append("Total", count, money.Sum(revenue...), money.Sum(cost...), money.Sum(profit...))
}

func (w *writer) assessment(data Data) {
	w.newSheet(SheetAssessment,
		"Location", "Advice", "Score", "Expected return %", "Price per m²",
		"Region", "Distance (km)", "Market price per m²", "Notes",
	)
	for _, a := range data.Assessments {
		w.append(a.Location, string(a.Advice), a.Score, a.ExpectedReturnPct, a.PricePerM2,
			a.Region, optional(a.DistanceKm), optional(a.MarketPricePerM2), strings.Join(a.Notes, "; "),
		)
	}
}
