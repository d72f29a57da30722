// Package money holds the numeric helpers shared by the valuation core:
// lenient number coercion, currency rounding and exchange-rate conversion.
//
// Amounts are carried as float64 throughout the core. Rounding to cents goes
// through decimal so that results are rounded half away from zero instead of
// inheriting binary floating point artifacts.
package money

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency codes used by the portfolio. Primary is the home currency every
// parcel is priced in, Secondary is the investors' currency.
const (
	PrimaryCurrency   = "GMD"
	SecondaryCurrency = "EUR"
)

// SafeNumber coerces value to a float64. Strings are trimmed and parsed, nil,
// empty strings, NaN, infinities and unsupported types yield def. It never panics.
func SafeNumber(value interface{}, def float64) float64 {
	switch v := value.(type) {
	case nil:
		return def
	case float64:
		return finite(v, def)
	case float32:
		return finite(float64(v), def)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return def
		}
		return finite(f, def)
	case decimal.Decimal:
		return finite(v.InexactFloat64(), def)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return finite(f, def)
	default:
		return def
	}
}

func finite(f, def float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Round2 rounds v to two decimals, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds the values exactly and rounds the total to two decimals.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// RateAvailable reports whether fx can be used for conversion.
// A zero, negative or non-finite rate means the provider had nothing to offer.
func RateAvailable(fx float64) bool {
	return fx > 0 && !math.IsInf(fx, 0)
}

// ToSecondary converts a primary amount with fx (primary units per secondary
// unit), rounded to cents. It returns nil when fx is unavailable.
func ToSecondary(amount, fx float64) *float64 {
	if !RateAvailable(fx) {
		return nil
	}
	v := Round2(amount / fx)
	return &v
}

// ToPrimary is the inverse of ToSecondary.
func ToPrimary(amount, fx float64) *float64 {
	if !RateAvailable(fx) {
		return nil
	}
	v := Round2(amount * fx)
	return &v
}

// Ptr returns a pointer to a copy of v.
func Ptr(v float64) *float64 {
	return &v
}

// NonZero returns a pointer to v rounded to cents, or nil when v is zero.
func NonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	r := Round2(v)
	return &r
}
