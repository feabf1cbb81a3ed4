// Package collections creates and seeds the PocketBase schema backing the
// Wash&Go ERP.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically ensures every application collection exists.
// Creation order matters: relation fields reference earlier collections.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "settings", func(c *core.Collection) {
		c.Fields.Add(&core.BoolField{Name: "vat_enabled"})
		c.Fields.Add(&core.NumberField{Name: "vat_rate"})
	})

	companies := ensureCollection(app, "companies", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "logo_url"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "postal_code"})
		c.Fields.Add(&core.TextField{Name: "city"})
		c.Fields.Add(&core.TextField{Name: "country"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.URLField{Name: "website"})
		c.Fields.Add(&core.TextField{Name: "siret"})
		c.Fields.Add(&core.TextField{Name: "vat_number"})
		c.Fields.Add(&core.TextField{Name: "iban"})
		c.Fields.Add(&core.TextField{Name: "bic"})
		c.Fields.Add(&core.TextField{Name: "legal_notes"})
		// Empty means the company never chose; the global default applies.
		c.Fields.Add(&core.SelectField{
			Name:      "vat_mode",
			Values:    []string{"enabled", "disabled"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "is_default"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	clients := ensureCollection(app, "clients", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    []string{"company", "individual"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "siret"})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "city"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"Actif", "Prospect"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "tags"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "client_contacts", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "client",
			Required:      true,
			CollectionId:  clients.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "first_name"})
		c.Fields.Add(&core.TextField{Name: "last_name"})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "mobile"})
		c.Fields.Add(&core.JSONField{Name: "roles"})
		c.Fields.Add(&core.BoolField{Name: "is_billing_default"})
		c.Fields.Add(&core.BoolField{Name: "active"})
	})

	servicesCol := ensureCollection(app, "services", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Required:  true,
			Values:    []string{"Voiture", "Canapé", "Textile"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.BoolField{Name: "active"})
	})

	ensureCollection(app, "service_options", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "service",
			Required:      true,
			CollectionId:  servicesCol.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "label", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "unit_price_ht", Required: true})
		c.Fields.Add(&core.NumberField{Name: "default_duration_min"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
	})

	engagements := ensureCollection(app, "engagements", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			Required:     true,
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "company",
			CollectionId: companies.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "service",
			Required:     true,
			CollectionId: servicesCol.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.JSONField{Name: "option_ids"})
		c.Fields.Add(&core.JSONField{Name: "option_overrides"})
		c.Fields.Add(&core.DateField{Name: "scheduled_at", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"brouillon", "envoyé", "planifié", "réalisé", "annulé"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"service", "devis", "facture"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "support_type",
			Values:    []string{"Voiture", "Canapé", "Textile"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "support_detail"})
		c.Fields.Add(&core.NumberField{Name: "additional_charge"})
		c.Fields.Add(&core.JSONField{Name: "contact_ids"})
		c.Fields.Add(&core.JSONField{Name: "send_history"})
		c.Fields.Add(&core.TextField{Name: "invoice_number"})
		c.Fields.Add(&core.SelectField{
			Name:      "invoice_vat_mode",
			Values:    []string{"enabled", "disabled"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "quote_number"})
		c.Fields.Add(&core.SelectField{
			Name:      "quote_status",
			Values:    []string{"brouillon", "envoyé", "planifié", "réalisé", "annulé"},
			MaxSelect: 1,
		})
		// Pre-sequencing numbers moved out of the canonical columns so they
		// never feed the month sequence scan.
		c.Fields.Add(&core.TextField{Name: "legacy_reference"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "documents", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "engagement",
			CollectionId: engagements.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "number", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    []string{"Facture", "Devis"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "company",
			CollectionId: companies.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.DateField{Name: "issue_date"})
		c.Fields.Add(&core.NumberField{Name: "subtotal_ht"})
		c.Fields.Add(&core.NumberField{Name: "vat_amount"})
		c.Fields.Add(&core.NumberField{Name: "total_ttc"})
		c.Fields.Add(&core.BoolField{Name: "vat_enabled"})
		c.Fields.Add(&core.NumberField{Name: "vat_rate"})
		c.Fields.Add(&core.FileField{Name: "pdf", MaxSelect: 1, MaxSize: 10 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	vehicles := ensureCollection(app, "vehicles", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "mileage"})
		c.Fields.Add(&core.NumberField{Name: "usage_rate"})
		c.Fields.Add(&core.NumberField{Name: "cost_per_km"})
		c.Fields.Add(&core.BoolField{Name: "active"})
	})

	ensureCollection(app, "purchases", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "company",
			CollectionId: companies.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "vendor", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference"})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.DateField{Name: "date", Required: true})
		c.Fields.Add(&core.NumberField{Name: "amount_ht", Required: true})
		c.Fields.Add(&core.NumberField{Name: "vat_rate"})
		c.Fields.Add(&core.NumberField{Name: "amount_ttc"})
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Values:    []string{"Produits", "Services", "Carburant", "Entretien", "Sous-traitance", "Autre"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"Brouillon", "Validé", "Payé", "Annulé"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "recurring"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.RelationField{
			Name:         "vehicle",
			CollectionId: vehicles.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "kilometers"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it
// does, the existing collection is returned. Otherwise a new base collection
// is created, the addFields callback populates its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
