package models

import "strings"

// DealStage is a parcel's position in the acquisition pipeline.
type DealStage string

const (
	StageAcquisition DealStage = "acquisition"
	StageConversion  DealStage = "conversion"
	StageSale        DealStage = "sale"
	StageSold        DealStage = "sold"
	StageUnknown     DealStage = "unknown"
)

// pipeline is the fixed stage order. Parcels move one step at a time.
var pipeline = []DealStage{StageAcquisition, StageConversion, StageSale, StageSold}

var stageLabels = map[string]DealStage{
	"acquisition":           StageAcquisition,
	"aankoop":               StageAcquisition,
	"in portfolio":          StageAcquisition,
	"conversion":            StageConversion,
	"omzetting / bewerking": StageConversion,
	"omzetting":             StageConversion,
	"in planning":           StageConversion,
	"sale":                  StageSale,
	"verkoop":               StageSale,
	"sold":                  StageSold,
	"verkocht":              StageSold,
}

// ParseDealStage maps a stage label, current or legacy, to a DealStage.
// An empty label is a fresh acquisition; anything unrecognised is StageUnknown.
func ParseDealStage(label string) DealStage {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return StageAcquisition
	}
	if stage, ok := stageLabels[s]; ok {
		return stage
	}
	return StageUnknown
}

func (s DealStage) index() int {
	for i, stage := range pipeline {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage, or false when s is the last stage or unknown.
func (s DealStage) Next() (DealStage, bool) {
	i := s.index()
	if i < 0 || i == len(pipeline)-1 {
		return s, false
	}
	return pipeline[i+1], true
}

// Previous returns the preceding stage, or false when s is the first stage or unknown.
func (s DealStage) Previous() (DealStage, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return pipeline[i-1], true
}

// Active reports whether the parcel is still held and valued by projection.
func (s DealStage) Active() bool {
	return s == StageAcquisition || s == StageConversion
}

// Label is the display name of the stage.
func (s DealStage) Label() string {
	switch s {
	case StageAcquisition:
		return "Acquisition"
	case StageConversion:
		return "Conversion"
	case StageSale:
		return "Sale"
	case StageSold:
		return "Sold"
	}
	return "Unknown"
}

// RateBasis describes how an investor's interest accrues.
type RateBasis string

const (
	BasisMonthly RateBasis = "monthly"
	BasisAnnual  RateBasis = "annual"
	BasisAtSale  RateBasis = "at_sale"
	BasisUnknown RateBasis = "unknown"
)

var basisLabels = map[string]RateBasis{
	"monthly":     BasisMonthly,
	"maandelijks": BasisMonthly,
	"annual":      BasisAnnual,
	"yearly":      BasisAnnual,
	"jaarlijks":   BasisAnnual,
	"at_sale":     BasisAtSale,
	"at sale":     BasisAtSale,
	"bij verkoop": BasisAtSale,
}

// ParseRateBasis maps a basis label to a RateBasis. Anything else, including an
// empty label, is BasisUnknown, which accrues no interest.
func ParseRateBasis(label string) RateBasis {
	if b, ok := basisLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return b
	}
	return BasisUnknown
}

// Periodic reports whether the basis produces recurring payments.
func (b RateBasis) Periodic() bool {
	return b == BasisMonthly || b == BasisAnnual
}

// Strategy is the plan for a parcel. The empty Strategy means none was chosen.
type Strategy string

const (
	StrategyNone          Strategy = ""
	StrategyShortTermSale Strategy = "short_term_sale"
	StrategySubdivide     Strategy = "subdivide_and_sell"
	StrategyBuildHomes    Strategy = "build_homes"
	StrategyStartBusiness Strategy = "start_business"
	StrategyUndecided     Strategy = "undecided"
)

var strategyLabels = map[string]Strategy{
	"short_term_sale":        StrategyShortTermSale,
	"korte termijn verkoop":  StrategyShortTermSale,
	"subdivide_and_sell":     StrategySubdivide,
	"verkavelen en verkopen": StrategySubdivide,
	"build_homes":            StrategyBuildHomes,
	"zelf woningen bouwen":   StrategyBuildHomes,
	"start_business":         StrategyStartBusiness,
	"zelf bedrijf starten":   StrategyStartBusiness,
	"undecided":              StrategyUndecided,
	"nog onbekend":           StrategyUndecided,
}

// ParseStrategy maps a strategy label to a Strategy. Labels outside the known
// set are kept verbatim so that they still group in overviews.
func ParseStrategy(label string) Strategy {
	trimmed := strings.TrimSpace(label)
	if s, ok := strategyLabels[strings.ToLower(trimmed)]; ok {
		return s
	}
	return Strategy(trimmed)
}

// Known reports whether s is one of the predefined strategies.
func (s Strategy) Known() bool {
	switch s {
	case StrategyShortTermSale, StrategySubdivide, StrategyBuildHomes, StrategyStartBusiness, StrategyUndecided:
		return true
	}
	return false
}
