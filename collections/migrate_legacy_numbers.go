package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"washngo/services"
)

// MigrateLegacyDocumentNumbers moves non-conforming invoice/quote numbers
// (hand-edited or imported before sequential numbering existed) into the
// legacy_reference column. The canonical columns then only ever hold
// PREFIX-YYYYMM-NNNN values, so the monthly sequence scan is never polluted
// by unrelated digits.
func MigrateLegacyDocumentNumbers(app *pocketbase.PocketBase) error {
	records, err := app.FindAllRecords("engagements")
	if err != nil {
		return fmt.Errorf("list engagements: %w", err)
	}

	migrated := 0
	for _, record := range records {
		changed := false

		if number := record.GetString("invoice_number"); number != "" &&
			!services.IsCanonicalNumber(number, services.InvoicePrefix) {
			record.Set("legacy_reference", number)
			record.Set("invoice_number", "")
			changed = true
		}
		if number := record.GetString("quote_number"); number != "" &&
			!services.IsCanonicalNumber(number, services.QuotePrefix) {
			if record.GetString("legacy_reference") == "" {
				record.Set("legacy_reference", number)
			}
			record.Set("quote_number", "")
			changed = true
		}

		if !changed {
			continue
		}
		if err := app.Save(record); err != nil {
			return fmt.Errorf("migrate engagement %s: %w", record.Id, err)
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("Moved %d legacy document numbers to legacy_reference", migrated)
	}
	return nil
}
