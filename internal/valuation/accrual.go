// Package valuation computes what a parcel is worth and what each of its
// investors is owed. Every function is a pure computation over its arguments.
package valuation

import (
	"math"

	"github.com/stwalsh4118/landledger/internal/models"
)

// AccrueInterest returns the interest an investor has earned on principal.
//
// Monthly compounds rate/12 once per elapsed month, annual compounds rate per
// elapsed (fractional) year, and at-sale is a flat rate*principal regardless of
// time. Any other basis accrues nothing. Non-positive principal or rate yields 0.
func AccrueInterest(principal, rate float64, basis models.RateBasis, months int, years float64) float64 {
	if principal <= 0 || rate <= 0 {
		return 0
	}

	switch basis {
	case models.BasisMonthly:
		if months <= 0 {
			return 0
		}
		return principal * (math.Pow(1+rate/12, float64(months)) - 1)
	case models.BasisAnnual:
		if years <= 0 {
			return 0
		}
		return principal * (math.Pow(1+rate, years) - 1)
	case models.BasisAtSale:
		return principal * rate
	default:
		return 0
	}
}
