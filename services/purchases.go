package services

// Purchase categories and statuses, as used by the purchases ledger.
var (
	PurchaseCategories = []string{"Produits", "Services", "Carburant", "Entretien", "Sous-traitance", "Autre"}
	PurchaseStatuses   = []string{"Brouillon", "Validé", "Payé", "Annulé"}
)

// ComputeAmountTTC derives the TTC amount of a purchase from its HT amount
// and VAT rate. The stored TTC is always recomputed on write, never edited
// directly. Non-finite inputs count as zero.
func ComputeAmountTTC(amountHT, vatRate float64) float64 {
	if !isFinite(amountHT) {
		amountHT = 0
	}
	return RoundCurrency(amountHT * (1 + SanitizeVatRate(vatRate)/100))
}
