package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/money"
)

// Record is a parcel or investor as stored and exchanged: a decoded JSON object.
type Record map[string]interface{}

// legacyKeys lists the older key names each canonical key may still appear under
// in imported data sets. The canonical key always wins when both are present.
var legacyKeys = map[string][]string{
	"location":                 {"locatie"},
	"deal_stage":               {"dealstage"},
	"strategy":                 {"strategie"},
	"purchase_date":            {"aankoopdatum"},
	"purchase_price":           {"aankoopprijs"},
	"purchase_price_secondary": {"aankoopprijs_eur"},
	"sale_date":                {"verkoopdatum"},
	"sale_price":               {"verkoopprijs"},
	"sale_price_secondary":     {"verkoopprijs_eur"},
	"expected_revenue":         {"verwachte_opbrengst_eur"},
	"expected_cost":            {"verwachte_kosten_eur"},
	"expected_cost_internal":   {"kosten_qg_eur"},
	"expected_cost_external":   {"kosten_extern_eur"},
	"planned_end_date":         {"doorlooptijd"},
	"sales_start_date":         {"start_verkooptraject"},
	"plot_count":               {"aantal_plots"},
	"price_per_plot":           {"prijs_per_plot_gmd"},
	"price_per_plot_secondary": {"prijs_per_plot_eur"},
	"sales_period_months":      {"verkoopperiode_maanden"},
	"length_m":                 {"lengte"},
	"width_m":                  {"breedte"},
	"boundary":                 {"polygon"},
	"status_note":              {"status_toelichting"},
	"investors":                {"investeerders"},
	"name":                     {"naam"},
	"principal":                {"bedrag"},
	"principal_secondary":      {"bedrag_eur"},
	"interest_rate":            {"rente"},
	"rate_basis":               {"rentetype"},
	"profit_share":             {"winstdeling"},
}

// Get returns the value stored under key or one of its legacy aliases.
func (r Record) Get(key string) (interface{}, bool) {
	if v, ok := r[key]; ok && v != nil {
		return v, true
	}
	for _, alias := range legacyKeys[key] {
		if v, ok := r[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Number coerces the value under key, falling back to 0.
func (r Record) Number(key string) float64 {
	v, _ := r.Get(key)
	return money.SafeNumber(v, 0)
}

// String returns the trimmed string form of the value under key.
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Date parses the value under key. Unparseable dates come back nil.
func (r Record) Date(key string) *time.Time {
	v, _ := r.Get(key)
	return dates.ParsePtr(v)
}

// Canonical returns a copy of r with every legacy key renamed to its canonical
// name. Keys it does not know are kept untouched.
func (r Record) Canonical() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for canonical, aliases := range legacyKeys {
		for _, alias := range aliases {
			v, ok := out[alias]
			if !ok {
				continue
			}
			delete(out, alias)
			if existing, present := out[canonical]; !present || existing == nil {
				out[canonical] = v
			}
		}
	}
	return out
}
