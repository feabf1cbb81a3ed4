package services

import (
	"math"
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestResolveOption(t *testing.T) {
	option := CatalogOption{ID: "opt1", Label: "Lavage intérieur", UnitPriceHT: 49.90, DefaultDurationMin: 45}

	tests := []struct {
		name     string
		override *OptionOverride
		expect   ResolvedOption
	}{
		{"nil_override", nil, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"empty_override", &OptionOverride{}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"full_override", &OptionOverride{Quantity: intPtr(3), DurationMin: intPtr(60), UnitPriceHT: floatPtr(39.90)}, ResolvedOption{Quantity: 3, DurationMin: 60, UnitPriceHT: 39.90}},
		{"zero_quantity_falls_back", &OptionOverride{Quantity: intPtr(0)}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"negative_quantity_falls_back", &OptionOverride{Quantity: intPtr(-2)}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"negative_price_falls_back", &OptionOverride{UnitPriceHT: floatPtr(-10)}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"nan_price_falls_back", &OptionOverride{UnitPriceHT: floatPtr(math.NaN())}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"inf_price_falls_back", &OptionOverride{UnitPriceHT: floatPtr(math.Inf(1))}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
		{"zero_price_allowed", &OptionOverride{UnitPriceHT: floatPtr(0)}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 0}},
		{"zero_duration_allowed", &OptionOverride{DurationMin: intPtr(0)}, ResolvedOption{Quantity: 1, DurationMin: 0, UnitPriceHT: 49.90}},
		{"negative_duration_falls_back", &OptionOverride{DurationMin: intPtr(-30)}, ResolvedOption{Quantity: 1, DurationMin: 45, UnitPriceHT: 49.90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOption(option, tt.override)
			if got != tt.expect {
				t.Errorf("ResolveOption() = %+v, want %+v", got, tt.expect)
			}
		})
	}
}

func TestSanitizeOverrides(t *testing.T) {
	t.Run("drops_unselected_options", func(t *testing.T) {
		overrides := map[string]OptionOverride{
			"kept":    {Quantity: intPtr(2)},
			"dropped": {Quantity: intPtr(5)},
		}
		got := SanitizeOverrides([]string{"kept"}, overrides)
		if _, ok := got["dropped"]; ok {
			t.Error("override for unselected option survived sanitization")
		}
		if entry, ok := got["kept"]; !ok || entry.Quantity == nil || *entry.Quantity != 2 {
			t.Errorf("kept override = %+v, want quantity 2", got["kept"])
		}
	})

	t.Run("clamps_values", func(t *testing.T) {
		overrides := map[string]OptionOverride{
			"a": {Quantity: intPtr(0), UnitPriceHT: floatPtr(-5), DurationMin: intPtr(-10)},
		}
		got := SanitizeOverrides([]string{"a"}, overrides)
		entry := got["a"]
		if entry.Quantity == nil || *entry.Quantity != 1 {
			t.Errorf("quantity = %v, want 1", entry.Quantity)
		}
		if entry.UnitPriceHT == nil || *entry.UnitPriceHT != 0 {
			t.Errorf("unit price = %v, want 0", entry.UnitPriceHT)
		}
		if entry.DurationMin == nil || *entry.DurationMin != 0 {
			t.Errorf("duration = %v, want 0", entry.DurationMin)
		}
	})

	t.Run("drops_non_finite_price", func(t *testing.T) {
		overrides := map[string]OptionOverride{
			"a": {UnitPriceHT: floatPtr(math.NaN())},
		}
		got := SanitizeOverrides([]string{"a"}, overrides)
		if got["a"].UnitPriceHT != nil {
			t.Error("NaN unit price should be dropped, not stored")
		}
	})

	t.Run("empty_input_yields_empty_map", func(t *testing.T) {
		got := SanitizeOverrides([]string{"a"}, nil)
		if got == nil || len(got) != 0 {
			t.Errorf("SanitizeOverrides(nil) = %v, want empty map", got)
		}
	})
}

func TestComputeTotals(t *testing.T) {
	options := []CatalogOption{
		{ID: "int", Label: "Intérieur", UnitPriceHT: 50, DefaultDurationMin: 45},
		{ID: "ext", Label: "Extérieur", UnitPriceHT: 30, DefaultDurationMin: 30},
		{ID: "cire", Label: "Cire", UnitPriceHT: 25, DefaultDurationMin: 20},
	}

	t.Run("sums_selected_options_only", func(t *testing.T) {
		got := ComputeTotals(options, []string{"int", "ext"}, nil, 0)
		if got.Price != 80 || got.Duration != 75 || got.Surcharge != 0 {
			t.Errorf("totals = %+v, want price 80 duration 75", got)
		}
	})

	t.Run("quantity_scales_price_and_duration", func(t *testing.T) {
		overrides := map[string]OptionOverride{
			"int": {Quantity: intPtr(2)},
		}
		got := ComputeTotals(options, []string{"int"}, overrides, 0)
		if got.Price != 100 || got.Duration != 90 {
			t.Errorf("totals = %+v, want price 100 duration 90", got)
		}
	})

	t.Run("surcharge_passes_through_flat", func(t *testing.T) {
		overrides := map[string]OptionOverride{
			"int": {Quantity: intPtr(3)},
		}
		got := ComputeTotals(options, []string{"int"}, overrides, 15)
		if got.Surcharge != 15 {
			t.Errorf("surcharge = %v, want flat 15 regardless of quantities", got.Surcharge)
		}
	})

	t.Run("negative_surcharge_ignored", func(t *testing.T) {
		got := ComputeTotals(options, []string{"int"}, nil, -10)
		if got.Surcharge != 0 {
			t.Errorf("surcharge = %v, want 0", got.Surcharge)
		}
	})

	t.Run("nan_surcharge_ignored", func(t *testing.T) {
		got := ComputeTotals(options, []string{"int"}, nil, math.NaN())
		if got.Surcharge != 0 {
			t.Errorf("surcharge = %v, want 0", got.Surcharge)
		}
	})

	t.Run("no_options_selected", func(t *testing.T) {
		got := ComputeTotals(options, nil, nil, 20)
		if got.Price != 0 || got.Duration != 0 || got.Surcharge != 20 {
			t.Errorf("totals = %+v, want only the surcharge", got)
		}
	})

	t.Run("unknown_option_ids_ignored", func(t *testing.T) {
		got := ComputeTotals(options, []string{"ghost", "int"}, nil, 0)
		if got.Price != 50 {
			t.Errorf("price = %v, want 50", got.Price)
		}
	})
}

func TestVatModeResolve(t *testing.T) {
	tests := []struct {
		name       string
		mode       VatMode
		companyVat *bool
		globalVat  bool
		expect     bool
	}{
		{"document_enabled_wins", VatEnabled, boolPtr(false), false, true},
		{"document_disabled_wins", VatDisabled, boolPtr(true), true, false},
		{"inherit_uses_company_true", VatInherit, boolPtr(true), false, true},
		{"inherit_uses_company_false", VatInherit, boolPtr(false), true, false},
		{"inherit_falls_to_global_true", VatInherit, nil, true, true},
		{"inherit_falls_to_global_false", VatInherit, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.Resolve(tt.companyVat, tt.globalVat)
			if got != tt.expect {
				t.Errorf("Resolve() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestVatModeFor(t *testing.T) {
	if VatModeFor(true) != VatEnabled {
		t.Error("VatModeFor(true) should be enabled")
	}
	if VatModeFor(false) != VatDisabled {
		t.Error("VatModeFor(false) should be disabled")
	}
}

func TestSanitizeVatRate(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		expect float64
	}{
		{"standard", 20, 20},
		{"reduced", 5.5, 5.5},
		{"negative_clamped", -3, 0},
		{"nan_zeroed", math.NaN(), 0},
		{"inf_zeroed", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeVatRate(tt.rate); got != tt.expect {
				t.Errorf("SanitizeVatRate(%v) = %v, want %v", tt.rate, got, tt.expect)
			}
		})
	}
}

func TestComputeVatBreakdown(t *testing.T) {
	t.Run("vat_applies_to_price_only", func(t *testing.T) {
		totals := Totals{Price: 100, Surcharge: 10}
		got := ComputeVatBreakdown(totals, 20, true)
		if got.VatAmount != 20 {
			t.Errorf("vat amount = %v, want 20 (surcharge excluded from base)", got.VatAmount)
		}
		if got.TotalTTC != 130 {
			t.Errorf("total TTC = %v, want 130", got.TotalTTC)
		}
	})

	t.Run("vat_disabled", func(t *testing.T) {
		totals := Totals{Price: 100, Surcharge: 10}
		got := ComputeVatBreakdown(totals, 20, false)
		if got.VatAmount != 0 {
			t.Errorf("vat amount = %v, want 0", got.VatAmount)
		}
		if got.TotalTTC != 110 {
			t.Errorf("total TTC = %v, want 110", got.TotalTTC)
		}
	})

	t.Run("vat_amount_rounded", func(t *testing.T) {
		totals := Totals{Price: 33.33}
		got := ComputeVatBreakdown(totals, 20, true)
		if got.VatAmount != 6.67 {
			t.Errorf("vat amount = %v, want 6.67", got.VatAmount)
		}
	})

	t.Run("negative_rate_sanitized", func(t *testing.T) {
		got := ComputeVatBreakdown(Totals{Price: 100}, -20, true)
		if got.VatRate != 0 || got.VatAmount != 0 {
			t.Errorf("breakdown = %+v, want rate and amount 0", got)
		}
	})
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		value  float64
		expect float64
	}{
		{1.004, 1.0},
		{1.006, 1.01},
		{-1.006, -1.01},
		{0, 0},
		{1234.5678, 1234.57},
	}
	for _, tt := range tests {
		if got := RoundCurrency(tt.value); got != tt.expect {
			t.Errorf("RoundCurrency(%v) = %v, want %v", tt.value, got, tt.expect)
		}
	}
}
