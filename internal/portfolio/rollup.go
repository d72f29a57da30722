package portfolio

import (
	"sort"
	"time"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// annualizeThreshold is the shortest holding, in years, whose profit is
// divided by its duration. Shorter holdings report their total profit as the
// yearly figure instead of extrapolating it.
const annualizeThreshold = 0.5

// minDurationYears keeps the duration strictly positive.
const minDurationYears = 0.01

// ParcelProfit is the profit plan of one parcel, in the secondary currency.
type ParcelProfit struct {
	Location         string          `json:"location"`
	Strategy         models.Strategy `json:"strategy,omitempty"`
	Sold             bool            `json:"sold"`
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	Revenue          float64         `json:"revenue"`
	Cost             float64         `json:"cost"`
	Purchase         float64         `json:"purchase"`
	Investment       float64         `json:"investment"`
	TotalProfit      float64         `json:"total_profit"`
	DurationYears    float64         `json:"duration_years"`
	ProfitPerYear    float64         `json:"profit_per_year"`
	ReturnPctPerYear float64         `json:"return_pct_per_year"`
	Months           int             `json:"months"`
}

// YearRow totals one calendar year. The averages are taken over every month
// that any parcel contributes to the year.
type YearRow struct {
	Year             int     `json:"year"`
	Profit           float64 `json:"profit"`
	AvgProfitPerYear float64 `json:"avg_profit_per_year"`
	AvgReturnPct     float64 `json:"avg_return_pct"`
}

// MonthRow totals one calendar month.
type MonthRow struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Profit float64    `json:"profit"`
}

// Rollup spreads planned and realised profit over time.
type Rollup struct {
	Parcels []ParcelProfit `json:"parcels"`
	Years   []YearRow      `json:"years"`
	Months  []MonthRow     `json:"months"`
}

// monthSlice is one parcel's share of profit in one month.
type monthSlice struct {
	key         monthKey
	profit      float64
	perYear     float64
	returnPerYr float64
}

type monthKey struct {
	year  int
	month time.Month
}

// YearlyProfitRollup spreads each eligible parcel's total profit evenly over
// the months between its start and end, then totals the result per year and
// per month.
//
// Sold parcels are eligible with their sale date as end and their secondary
// sale price as revenue. Other parcels are eligible when they have a planned
// end date; their revenue is the subdivision revenue when planned, else the
// expected revenue. An empty strategy matches all parcels.
func YearlyProfitRollup(parcels []models.Parcel, strategy models.Strategy, asOf time.Time) Rollup {
	r := Rollup{Parcels: []ParcelProfit{}, Years: []YearRow{}, Months: []MonthRow{}}
	var slices []monthSlice

	for _, p := range parcels {
		if strategy != models.StrategyNone && p.Strategy != strategy {
			continue
		}
		plan, ok := planProfit(p, asOf)
		if !ok {
			continue
		}

		monthly := plan.TotalProfit / float64(plan.Months)
		cursor := dates.MonthStart(plan.Start)
		for i := 0; i < plan.Months; i++ {
			slices = append(slices, monthSlice{
				key:         monthKey{year: cursor.Year(), month: cursor.Month()},
				profit:      monthly,
				perYear:     plan.ProfitPerYear,
				returnPerYr: plan.ReturnPctPerYear,
			})
			cursor = dates.AddMonths(cursor, 1)
		}

		plan.Revenue = money.Round2(plan.Revenue)
		plan.Cost = money.Round2(plan.Cost)
		plan.Purchase = money.Round2(plan.Purchase)
		plan.Investment = money.Round2(plan.Investment)
		plan.TotalProfit = money.Round2(plan.TotalProfit)
		plan.DurationYears = money.Round2(plan.DurationYears)
		plan.ProfitPerYear = money.Round2(plan.ProfitPerYear)
		plan.ReturnPctPerYear = money.Round2(plan.ReturnPctPerYear)
		r.Parcels = append(r.Parcels, plan)
	}

	r.Years = yearRows(slices)
	r.Months = monthRows(slices)
	return r
}

// planProfit derives the unrounded profit plan of p, or false when p is not
// eligible for the rollup.
func planProfit(p models.Parcel, asOf time.Time) (ParcelProfit, bool) {
	sold := p.DealStage == models.StageSold
	var endDate *time.Time
	var revenue float64

	switch {
	case sold:
		endDate = p.SaleDate
		if endDate == nil {
			endDate = p.PlannedEndDate
		}
		revenue = p.SalePrice.Secondary
	case p.PlannedEndDate != nil:
		endDate = p.PlannedEndDate
		revenue = p.ExpectedRevenue
		if p.Subdivision != nil {
			if planned := p.Subdivision.TotalRevenue().Secondary; planned != 0 {
				revenue = planned
			}
		}
	default:
		return ParcelProfit{}, false
	}

	start, end := window(p, endDate, asOf)

	cost := p.TotalExpectedCost()
	purchase := p.PurchasePrice.Secondary
	investment := purchase + cost
	totalProfit := revenue - cost - purchase

	duration := max(float64(end.Year()-start.Year())+float64(int(end.Month())-int(start.Month()))/12, minDurationYears)
	perYear := totalProfit
	if duration >= annualizeThreshold {
		perYear = totalProfit / duration
	}
	returnPct := 0.0
	if investment != 0 {
		returnPct = perYear / investment * 100
	}

	return ParcelProfit{
		Location:         p.Location,
		Strategy:         p.Strategy,
		Sold:             sold,
		Start:            start,
		End:              end,
		Revenue:          revenue,
		Cost:             cost,
		Purchase:         purchase,
		Investment:       investment,
		TotalProfit:      totalProfit,
		DurationYears:    duration,
		ProfitPerYear:    perYear,
		ReturnPctPerYear: returnPct,
		Months:           max(dates.CalendarMonths(start, end)+1, 1),
	}, true
}

// window picks the period profit is spread over. The start is the sales start,
// else the purchase date, else one month before the end, else asOf. An end
// that is missing or before the start becomes one month after the start.
func window(p models.Parcel, endDate *time.Time, asOf time.Time) (time.Time, time.Time) {
	var start time.Time
	switch {
	case p.SalesStartDate != nil:
		start = *p.SalesStartDate
	case p.PurchaseDate != nil:
		start = *p.PurchaseDate
	case endDate != nil:
		start = dates.AddMonths(*endDate, -1)
	default:
		start = dates.Day(asOf)
	}

	if endDate == nil || endDate.Before(start) {
		return start, dates.AddMonths(start, 1)
	}
	return start, *endDate
}

func yearRows(slices []monthSlice) []YearRow {
	type acc struct {
		profit, perYear, returnPct float64
		n                          int
	}
	byYear := map[int]*acc{}
	for _, s := range slices {
		a, ok := byYear[s.key.year]
		if !ok {
			a = &acc{}
			byYear[s.key.year] = a
		}
		a.profit += s.profit
		a.perYear += s.perYear
		a.returnPct += s.returnPerYr
		a.n++
	}

	rows := make([]YearRow, 0, len(byYear))
	for year, a := range byYear {
		rows = append(rows, YearRow{
			Year:             year,
			Profit:           money.Round2(a.profit),
			AvgProfitPerYear: money.Round2(a.perYear / float64(a.n)),
			AvgReturnPct:     money.Round2(a.returnPct / float64(a.n)),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

func monthRows(slices []monthSlice) []MonthRow {
	byMonth := map[monthKey]float64{}
	for _, s := range slices {
		byMonth[s.key] += s.profit
	}

	rows := make([]MonthRow, 0, len(byMonth))
	for k, profit := range byMonth {
		rows = append(rows, MonthRow{Year: k.year, Month: k.month, Profit: money.Round2(profit)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}
