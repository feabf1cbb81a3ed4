// Package services holds the pricing, numbering and document logic for the
// Wash&Go ERP. The money math stays in pure functions so it can be tested
// without a running store.
package services

import (
	"math"
)

// CatalogOption is a billable line item belonging to a service catalog entry.
type CatalogOption struct {
	ID                 string  `json:"id"`
	Label              string  `json:"label"`
	Description        string  `json:"description,omitempty"`
	UnitPriceHT        float64 `json:"unitPriceHT"`
	DefaultDurationMin int     `json:"defaultDurationMin"`
}

// OptionOverride adjusts quantity, duration or unit price of a selected
// option for one engagement. Nil fields inherit the catalog defaults.
type OptionOverride struct {
	Quantity    *int     `json:"quantity,omitempty"`
	DurationMin *int     `json:"durationMin,omitempty"`
	UnitPriceHT *float64 `json:"unitPriceHT,omitempty"`
}

// ResolvedOption is the effective triple used by all downstream math.
type ResolvedOption struct {
	Quantity    int
	DurationMin int
	UnitPriceHT float64
}

// ResolveOption merges a catalog option with an optional override. Invalid
// override values (negative, NaN, Inf) fall back to the catalog defaults
// rather than erroring.
func ResolveOption(option CatalogOption, override *OptionOverride) ResolvedOption {
	resolved := ResolvedOption{
		Quantity:    1,
		DurationMin: option.DefaultDurationMin,
		UnitPriceHT: option.UnitPriceHT,
	}
	if override == nil {
		return resolved
	}
	if override.Quantity != nil && *override.Quantity > 0 {
		resolved.Quantity = *override.Quantity
	}
	if override.DurationMin != nil && *override.DurationMin >= 0 {
		resolved.DurationMin = *override.DurationMin
	}
	if override.UnitPriceHT != nil && isFinite(*override.UnitPriceHT) && *override.UnitPriceHT >= 0 {
		resolved.UnitPriceHT = *override.UnitPriceHT
	}
	return resolved
}

// SanitizeOverrides drops override entries keyed by options that are no
// longer selected and clamps the remaining values (quantity >= 1, duration
// and unit price >= 0). It is called on every change to the option selection
// or the override map, so overrides never reference unselected options.
func SanitizeOverrides(optionIDs []string, overrides map[string]OptionOverride) map[string]OptionOverride {
	next := map[string]OptionOverride{}
	if len(overrides) == 0 {
		return next
	}
	allowed := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		allowed[id] = struct{}{}
	}
	for optionID, value := range overrides {
		if _, ok := allowed[optionID]; !ok {
			continue
		}
		clean := OptionOverride{}

		quantity := 1
		if value.Quantity != nil && *value.Quantity > 1 {
			quantity = *value.Quantity
		}
		clean.Quantity = &quantity

		if value.UnitPriceHT != nil && isFinite(*value.UnitPriceHT) {
			price := math.Max(0, *value.UnitPriceHT)
			clean.UnitPriceHT = &price
		}
		if value.DurationMin != nil {
			duration := *value.DurationMin
			if duration < 0 {
				duration = 0
			}
			clean.DurationMin = &duration
		}
		next[optionID] = clean
	}
	return next
}

// Totals is the derived money/duration aggregate of an engagement. It is
// never persisted; callers recompute it from the source fields.
type Totals struct {
	Price     float64 `json:"price"`
	Duration  int     `json:"duration"`
	Surcharge float64 `json:"surcharge"`
}

// ComputeTotals aggregates the selected options of an engagement. A nil
// service yields zero totals: a catalog entry can be archived after
// engagements reference it, and that must degrade gracefully.
func ComputeTotals(options []CatalogOption, optionIDs []string, overrides map[string]OptionOverride, additionalCharge float64) Totals {
	selected := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		selected[id] = struct{}{}
	}

	totals := Totals{}
	for _, option := range options {
		if _, ok := selected[option.ID]; !ok {
			continue
		}
		var override *OptionOverride
		if value, ok := overrides[option.ID]; ok {
			override = &value
		}
		resolved := ResolveOption(option, override)
		totals.Price += resolved.UnitPriceHT * float64(resolved.Quantity)
		totals.Duration += resolved.DurationMin * resolved.Quantity
	}
	// The surcharge is a flat TTC amount, not scaled per unit.
	if isFinite(additionalCharge) && additionalCharge > 0 {
		totals.Surcharge = additionalCharge
	}
	return totals
}

// VatMode is the per-document VAT override. The zero value inherits the
// company setting, which in turn falls back to the global default.
type VatMode string

const (
	VatInherit  VatMode = ""
	VatEnabled  VatMode = "enabled"
	VatDisabled VatMode = "disabled"
)

// VatModeFor converts a resolved boolean back into an explicit mode, used
// when an invoice pins its VAT decision at generation time.
func VatModeFor(enabled bool) VatMode {
	if enabled {
		return VatEnabled
	}
	return VatDisabled
}

// Resolve walks the document -> company -> global fallback chain. A nil
// companyVatEnabled means the company never recorded an explicit setting,
// in which case the global default applies.
func (m VatMode) Resolve(companyVatEnabled *bool, globalVatEnabled bool) bool {
	switch m {
	case VatEnabled:
		return true
	case VatDisabled:
		return false
	default:
		if companyVatEnabled != nil {
			return *companyVatEnabled
		}
		return globalVatEnabled
	}
}

// SanitizeVatRate clamps a VAT percentage to [0, +inf) and treats
// non-finite input as 0.
func SanitizeVatRate(rate float64) float64 {
	if !isFinite(rate) {
		return 0
	}
	return math.Max(0, rate)
}

// RoundCurrency rounds to 2 decimals. Totals stay unrounded internally;
// rounding happens only at presentation and persistence boundaries.
func RoundCurrency(value float64) float64 {
	return math.Round(value*100) / 100
}

// VatBreakdown is the presentation-boundary view of an engagement's money:
// the HT subtotal, the VAT applied to it, and the flat TTC surcharge added
// after VAT.
type VatBreakdown struct {
	SubtotalHT float64 `json:"subtotalHt"`
	VatEnabled bool    `json:"vatEnabled"`
	VatRate    float64 `json:"vatRate"`
	VatAmount  float64 `json:"vatAmount"`
	Surcharge  float64 `json:"surcharge"`
	TotalTTC   float64 `json:"totalTtc"`
}

// ComputeVatBreakdown applies VAT to the HT price. The surcharge is already
// TTC and is never part of the VAT base.
func ComputeVatBreakdown(totals Totals, vatRate float64, vatEnabled bool) VatBreakdown {
	rate := SanitizeVatRate(vatRate)
	breakdown := VatBreakdown{
		SubtotalHT: totals.Price,
		VatEnabled: vatEnabled,
		VatRate:    rate,
		Surcharge:  totals.Surcharge,
	}
	if vatEnabled {
		breakdown.VatAmount = RoundCurrency(totals.Price * rate / 100)
	}
	breakdown.TotalTTC = totals.Price + breakdown.VatAmount + totals.Surcharge
	return breakdown
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
