package portfolio

import (
	"math"
	"strings"

	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// Advice is the outcome of a purchase assessment.
type Advice string

const (
	AdviceBuy   Advice = "buy"
	AdviceDoubt Advice = "doubt"
	AdviceAvoid Advice = "avoid"
)

// Assessment notes.
const (
	NoteHighInvestment     = "high investment raises currency risk"
	NoteModestInvestment   = "investment size keeps currency risk limited"
	NoteHighReturn         = "high expected return"
	NoteAverageReturn      = "average expected return"
	NoteNegativeReturn     = "negative expected return"
	NoteAboveMarket        = "purchase price per m² is above market"
	NoteBelowMarket        = "purchase price per m² is below market"
	NoteWithinMarket       = "purchase price per m² is in line with market"
	NoteMarketPriceUnknown = "market price per m² not available"
)

const (
	highReturnThreshold     = 0.4
	marketToleranceFraction = 0.1
	earthRadiusKm           = 6371.0088
	buyScore                = 2
	avoidScore              = -1
)

// Region is a reference town whose market price stands in for the parcels
// closest to it.
type Region struct {
	Name string
	Lat  float64
	Lng  float64
}

// DefaultRegions are the district towns of The Gambia.
var DefaultRegions = []Region{
	{"Banjul", 13.4549, -16.5790},
	{"Kanifing", 13.4799, -16.6825},
	{"Serekunda", 13.4304, -16.6781},
	{"Brikama", 13.2700, -16.6450},
	{"Bakau", 13.4781, -16.6819},
	{"Bijilo", 13.4218, -16.6814},
	{"Lamin", 13.3731, -16.6528},
	{"Farato", 13.3420, -16.7155},
	{"Tanji", 13.3522, -16.7915},
	{"Gunjur", 13.2010, -16.7507},
	{"Mansa Konko", 13.3500, -15.9500},
	{"Soma", 13.4000, -15.5333},
	{"Janjanbureh", 13.5333, -14.7667},
	{"Kuntaur", 13.6833, -14.9333},
	{"Kerewan", 13.4892, -16.0883},
	{"Farafenni", 13.5667, -15.6000},
	{"Essau", 13.4833, -16.5333},
	{"Basse", 13.3167, -14.2167},
	{"Fatoto", 13.3667, -13.9833},
	{"Koina", 13.4000, -13.8667},
}

// AssessmentRules configures Assess. Amounts are in the primary currency.
// A nil Regions uses DefaultRegions.
type AssessmentRules struct {
	HighInvestment     float64
	ExpectedValuePerM2 float64
	MarketPrices       map[string]float64
	Regions            []Region
}

// Assessment scores a parcel's purchase on currency risk, expected return and
// price against the local market.
type Assessment struct {
	Location          string   `json:"location"`
	Score             int      `json:"score"`
	Advice            Advice   `json:"advice"`
	Notes             []string `json:"notes"`
	ExpectedReturnPct float64  `json:"expected_return_pct"`
	PricePerM2        float64  `json:"price_per_m2"`
	Region            string   `json:"region,omitempty"`
	DistanceKm        *float64 `json:"distance_km"`
	MarketPricePerM2  *float64 `json:"market_price_per_m2"`
}

// Assess scores the purchase of p. Every criterion adds or subtracts one
// point. A score of two or more advises buying, minus one or less advises
// against it.
func Assess(p models.Parcel, rules AssessmentRules) Assessment {
	purchase := p.PurchasePrice.Primary
	area := p.Area()
	a := Assessment{Location: p.Location, Notes: []string{}}

	if purchase > rules.HighInvestment {
		a.Score--
		a.Notes = append(a.Notes, NoteHighInvestment)
	} else {
		a.Score++
		a.Notes = append(a.Notes, NoteModestInvestment)
	}

	expectedReturn := 0.0
	if purchase > 0 {
		expectedReturn = (area*rules.ExpectedValuePerM2 - purchase) / purchase
	}
	a.ExpectedReturnPct = money.Round2(expectedReturn * 100)
	switch {
	case expectedReturn > highReturnThreshold:
		a.Score++
		a.Notes = append(a.Notes, NoteHighReturn)
	case expectedReturn < 0:
		a.Score--
		a.Notes = append(a.Notes, NoteNegativeReturn)
	default:
		a.Notes = append(a.Notes, NoteAverageReturn)
	}

	perM2 := 0.0
	if area > 0 {
		perM2 = purchase / area
	}
	a.PricePerM2 = money.Round2(perM2)

	if lat, lng, ok := p.Boundary.Centroid(); ok {
		regions := rules.Regions
		if regions == nil {
			regions = DefaultRegions
		}
		if region, km, found := NearestRegion(lat, lng, regions); found {
			a.Region = region.Name
			a.DistanceKm = money.Ptr(money.Round2(km))
			if price, known := marketPrice(rules.MarketPrices, region.Name); known {
				a.MarketPricePerM2 = money.Ptr(price)
			}
		}
	}

	if a.MarketPricePerM2 == nil {
		a.Notes = append(a.Notes, NoteMarketPriceUnknown)
	} else {
		market := *a.MarketPricePerM2
		switch {
		case perM2 > market*(1+marketToleranceFraction):
			a.Score--
			a.Notes = append(a.Notes, NoteAboveMarket)
		case perM2 < market*(1-marketToleranceFraction):
			a.Score++
			a.Notes = append(a.Notes, NoteBelowMarket)
		default:
			a.Notes = append(a.Notes, NoteWithinMarket)
		}
	}

	switch {
	case a.Score >= buyScore:
		a.Advice = AdviceBuy
	case a.Score <= avoidScore:
		a.Advice = AdviceAvoid
	default:
		a.Advice = AdviceDoubt
	}
	return a
}

// AssessAll assesses every parcel in order.
func AssessAll(parcels []models.Parcel, rules AssessmentRules) []Assessment {
	out := make([]Assessment, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, Assess(p, rules))
	}
	return out
}

// NearestRegion returns the region closest to the point and its great-circle
// distance in kilometres. found is false for an empty region list.
func NearestRegion(lat, lng float64, regions []Region) (nearest Region, km float64, found bool) {
	for _, r := range regions {
		d := haversineKm(lat, lng, r.Lat, r.Lng)
		if !found || d < km {
			nearest, km, found = r, d, true
		}
	}
	return nearest, km, found
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// marketPrice looks a region up by name, ignoring case.
func marketPrice(prices map[string]float64, region string) (float64, bool) {
	if price, ok := prices[region]; ok {
		return price, true
	}
	for name, price := range prices {
		if strings.EqualFold(name, region) {
			return price, true
		}
	}
	return 0, false
}
