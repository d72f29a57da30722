package portfolio

import (
	"sort"
	"time"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// Payment is the next interest payment owed to one investor on one parcel.
// Amounts are in Currency: the secondary currency, unless the principal was
// only entered in the primary currency and no rate was available to convert it.
type Payment struct {
	Location          string           `json:"location"`
	Investor          string           `json:"investor"`
	RateBasis         models.RateBasis `json:"rate_basis"`
	Currency          string           `json:"currency"`
	StartDate         time.Time        `json:"start_date"`
	NextPaymentDate   time.Time        `json:"next_payment_date"`
	NextPaymentAmount float64          `json:"next_payment_amount"`
	AccruedToDate     float64          `json:"accrued_to_date"`
}

// BuildUpcomingPayments lists the next payment for every investor with a
// positive rate on a monthly or annual basis, ordered by payment date.
//
// Interest on this view is simple: monthly investors earn principal*rate/12
// for each monthly anniversary of the purchase date reached by asOf, annual
// investors principal*rate for each yearly one. The next payment falls on the
// first anniversary after asOf. A parcel without a purchase date is treated as
// bought on asOf. Principal without a secondary amount is converted with fx.
func BuildUpcomingPayments(parcels []models.Parcel, fx float64, asOf time.Time) []Payment {
	today := dates.Day(asOf)
	payments := []Payment{}

	for _, p := range parcels {
		start := dates.Or(p.PurchaseDate, today)

		for _, inv := range p.Investors {
			if inv.InterestRate <= 0 || !inv.RateBasis.Periodic() {
				continue
			}
			principal, currency := paymentPrincipal(inv.Principal, fx)
			rate := inv.InterestRate

			pay := Payment{
				Location:  p.Location,
				Investor:  inv.Name,
				RateBasis: inv.RateBasis,
				Currency:  currency,
				StartDate: start,
			}
			if inv.RateBasis == models.BasisMonthly {
				months := elapsedPeriods(start, today, 1)
				pay.AccruedToDate = money.Round2(principal * rate / 12 * float64(months))
				pay.NextPaymentDate = dates.AddMonths(start, months+1)
				pay.NextPaymentAmount = money.Round2(principal * rate / 12)
			} else {
				years := elapsedPeriods(start, today, 12)
				pay.AccruedToDate = money.Round2(principal * rate * float64(years))
				pay.NextPaymentDate = dates.AddYears(start, years+1)
				pay.NextPaymentAmount = money.Round2(principal * rate)
			}
			payments = append(payments, pay)
		}
	}

	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].NextPaymentDate.Before(payments[j].NextPaymentDate)
	})
	return payments
}

// paymentPrincipal picks the secondary principal, converting the primary one
// when only that was entered.
func paymentPrincipal(principal models.CurrencyPair, fx float64) (float64, string) {
	if principal.Secondary != 0 || principal.Primary == 0 {
		return principal.Secondary, money.SecondaryCurrency
	}
	if converted := money.ToSecondary(principal.Primary, fx); converted != nil {
		return *converted, money.SecondaryCurrency
	}
	return principal.Primary, money.PrimaryCurrency
}

// elapsedPeriods counts the periods of the given length in months whose
// anniversary of start falls on or before today.
func elapsedPeriods(start, today time.Time, months int) int {
	n := max(dates.CalendarMonths(start, today)/months, 0)
	if n > 0 && dates.AddMonths(start, n*months).After(today) {
		n--
	}
	return n
}
