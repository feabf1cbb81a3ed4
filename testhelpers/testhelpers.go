// Package testhelpers provides utilities for testing the PocketBase-backed
// application.
package testhelpers

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// SetGlobalVat creates or replaces the settings singleton.
func SetGlobalVat(t *testing.T, app *pocketbase.PocketBase, enabled bool, rate float64) *core.Record {
	t.Helper()

	existing, err := app.FindRecordsByFilter("settings", "", "", 1, 0)
	if err == nil && len(existing) > 0 {
		record := existing[0]
		record.Set("vat_enabled", enabled)
		record.Set("vat_rate", rate)
		if err := app.Save(record); err != nil {
			t.Fatalf("failed to update settings: %v", err)
		}
		return record
	}

	col, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		t.Fatalf("failed to find settings collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("vat_enabled", enabled)
	record.Set("vat_rate", rate)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return record
}

// CreateTestCompany creates a company record with complete legal fields.
func CreateTestCompany(t *testing.T, app *pocketbase.PocketBase, name string, isDefault bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("companies")
	if err != nil {
		t.Fatalf("failed to find companies collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("address", "1 rue des Tests")
	record.Set("postal_code", "69001")
	record.Set("city", "Lyon")
	record.Set("country", "France")
	record.Set("siret", "12345678900011")
	record.Set("is_default", isDefault)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test company: %v", err)
	}
	return record
}

// CreateTestClient creates a client record.
func CreateTestClient(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("clients")
	if err != nil {
		t.Fatalf("failed to find clients collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("type", "company")
	record.Set("name", name)
	record.Set("email", "compta@example.fr")
	record.Set("status", "Actif")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test client: %v", err)
	}
	return record
}

// CreateTestContact creates an active client contact.
func CreateTestContact(t *testing.T, app *pocketbase.PocketBase, clientID, email string, billingDefault bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("client_contacts")
	if err != nil {
		t.Fatalf("failed to find client_contacts collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("client", clientID)
	record.Set("first_name", "Test")
	record.Set("last_name", "Contact")
	record.Set("email", email)
	record.Set("is_billing_default", billingDefault)
	record.Set("active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test contact: %v", err)
	}
	return record
}

// CreateTestService creates a service record.
func CreateTestService(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("services")
	if err != nil {
		t.Fatalf("failed to find services collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("category", "Voiture")
	record.Set("name", name)
	record.Set("active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test service: %v", err)
	}
	return record
}

// CreateTestOption creates an option on a service.
func CreateTestOption(t *testing.T, app *pocketbase.PocketBase, serviceID, label string, unitPriceHT float64, durationMin int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("service_options")
	if err != nil {
		t.Fatalf("failed to find service_options collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("service", serviceID)
	record.Set("label", label)
	record.Set("unit_price_ht", unitPriceHT)
	record.Set("default_duration_min", durationMin)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test option: %v", err)
	}
	return record
}

// CreateTestEngagement creates a service-kind engagement with the given
// option selection.
func CreateTestEngagement(t *testing.T, app *pocketbase.PocketBase, clientID, serviceID string, optionIDs []string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("engagements")
	if err != nil {
		t.Fatalf("failed to find engagements collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("client", clientID)
	record.Set("service", serviceID)
	record.Set("option_ids", optionIDs)
	record.Set("option_overrides", map[string]any{})
	record.Set("scheduled_at", time.Now())
	record.Set("status", "planifié")
	record.Set("kind", "service")
	record.Set("support_type", "Voiture")
	record.Set("contact_ids", []string{})
	record.Set("send_history", []any{})

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test engagement: %v", err)
	}
	return record
}

// CreateTestPurchase creates a purchase record with a derived TTC amount.
func CreateTestPurchase(t *testing.T, app *pocketbase.PocketBase, vendor string, amountHT, vatRate, amountTTC float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("purchases")
	if err != nil {
		t.Fatalf("failed to find purchases collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("vendor", vendor)
	record.Set("reference", "ACH-TEST")
	record.Set("date", time.Now())
	record.Set("amount_ht", amountHT)
	record.Set("vat_rate", vatRate)
	record.Set("amount_ttc", amountTTC)
	record.Set("category", "Produits")
	record.Set("status", "Validé")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test purchase: %v", err)
	}
	return record
}
