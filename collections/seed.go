package collections

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type optionDef struct {
	label       string
	description string
	unitPriceHT float64
	durationMin float64
	sortOrder   int
}

type serviceDef struct {
	category    string
	name        string
	description string
	options     []optionDef
}

type contactDef struct {
	firstName      string
	lastName       string
	email          string
	mobile         string
	billingDefault bool
	active         bool
}

// Seed inserts a demo company, catalog, client and a handful of engagements
// when the database is empty. Existing data is never touched.
func Seed(app *pocketbase.PocketBase) error {
	existing, err := app.FindRecordsByFilter("companies", "", "", 1, 0)
	if err == nil && len(existing) > 0 {
		return nil
	}

	settings, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return fmt.Errorf("settings collection: %w", err)
	}
	settingsRecord := core.NewRecord(settings)
	settingsRecord.Set("vat_enabled", true)
	settingsRecord.Set("vat_rate", 20)
	if err := app.Save(settingsRecord); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	companies, err := app.FindCollectionByNameOrId("companies")
	if err != nil {
		return fmt.Errorf("companies collection: %w", err)
	}
	company := core.NewRecord(companies)
	company.Set("name", "Wash&Go Détailing")
	company.Set("address", "14 rue des Lavandières")
	company.Set("postal_code", "69003")
	company.Set("city", "Lyon")
	company.Set("country", "France")
	company.Set("phone", "04 72 00 00 00")
	company.Set("email", "contact@washngo.fr")
	company.Set("siret", "90123456700018")
	company.Set("vat_number", "FR32901234567")
	company.Set("legal_notes", "TVA acquittée sur les encaissements – pénalités de retard : 3× le taux légal.")
	company.Set("vat_mode", "enabled")
	company.Set("is_default", true)
	if err := app.Save(company); err != nil {
		return fmt.Errorf("seed company: %w", err)
	}

	clientID, contactIDs, err := seedClient(app)
	if err != nil {
		return err
	}

	serviceIDs, optionIDs, err := seedCatalog(app)
	if err != nil {
		return err
	}

	return seedEngagements(app, company.Id, clientID, contactIDs, serviceIDs, optionIDs)
}

func seedClient(app *pocketbase.PocketBase) (string, []string, error) {
	clients, err := app.FindCollectionByNameOrId("clients")
	if err != nil {
		return "", nil, fmt.Errorf("clients collection: %w", err)
	}
	client := core.NewRecord(clients)
	client.Set("type", "company")
	client.Set("name", "Garage Berliet")
	client.Set("siret", "78945612300021")
	client.Set("email", "atelier@garage-berliet.fr")
	client.Set("phone", "04 78 11 22 33")
	client.Set("address", "8 avenue Berthelot")
	client.Set("city", "Lyon")
	client.Set("status", "Actif")
	if err := app.Save(client); err != nil {
		return "", nil, fmt.Errorf("seed client: %w", err)
	}

	contacts, err := app.FindCollectionByNameOrId("client_contacts")
	if err != nil {
		return "", nil, fmt.Errorf("client_contacts collection: %w", err)
	}
	defs := []contactDef{
		{"Claire", "Besson", "claire.besson@garage-berliet.fr", "06 10 20 30 40", true, true},
		{"Marc", "Aubry", "marc.aubry@garage-berliet.fr", "06 50 60 70 80", false, true},
	}
	var ids []string
	for _, def := range defs {
		contact := core.NewRecord(contacts)
		contact.Set("client", client.Id)
		contact.Set("first_name", def.firstName)
		contact.Set("last_name", def.lastName)
		contact.Set("email", def.email)
		contact.Set("mobile", def.mobile)
		contact.Set("is_billing_default", def.billingDefault)
		contact.Set("active", def.active)
		if err := app.Save(contact); err != nil {
			return "", nil, fmt.Errorf("seed contact %s: %w", def.email, err)
		}
		ids = append(ids, contact.Id)
	}
	return client.Id, ids, nil
}

func seedCatalog(app *pocketbase.PocketBase) (map[string]string, map[string][]string, error) {
	servicesCol, err := app.FindCollectionByNameOrId("services")
	if err != nil {
		return nil, nil, fmt.Errorf("services collection: %w", err)
	}
	optionsCol, err := app.FindCollectionByNameOrId("service_options")
	if err != nil {
		return nil, nil, fmt.Errorf("service_options collection: %w", err)
	}

	defs := []serviceDef{
		{
			category:    "Voiture",
			name:        "Nettoyage intégral",
			description: "Intérieur et extérieur, finition main.",
			options: []optionDef{
				{"Extérieur carrosserie", "Lavage, décontamination, cire", 59, 60, 1},
				{"Intérieur complet", "Aspiration, plastiques, vitres", 79, 90, 2},
				{"Traitement céramique", "", 249, 180, 3},
			},
		},
		{
			category:    "Voiture",
			name:        "Express extérieur",
			description: "Lavage rapide sans rendez-vous.",
			options: []optionDef{
				{"Lavage express", "", 29, 30, 1},
				{"Jantes et pneus", "", 15, 15, 2},
			},
		},
		{
			category:    "Canapé",
			name:        "Injection-extraction canapé",
			description: "Tissus et microfibres.",
			options: []optionDef{
				{"Canapé 3 places", "", 89, 75, 1},
				{"Fauteuil", "", 39, 30, 2},
			},
		},
	}

	serviceIDs := map[string]string{}
	optionIDs := map[string][]string{}
	for _, def := range defs {
		service := core.NewRecord(servicesCol)
		service.Set("category", def.category)
		service.Set("name", def.name)
		service.Set("description", def.description)
		service.Set("active", true)
		if err := app.Save(service); err != nil {
			return nil, nil, fmt.Errorf("seed service %s: %w", def.name, err)
		}
		serviceIDs[def.name] = service.Id

		for _, opt := range def.options {
			option := core.NewRecord(optionsCol)
			option.Set("service", service.Id)
			option.Set("label", opt.label)
			option.Set("description", opt.description)
			option.Set("unit_price_ht", opt.unitPriceHT)
			option.Set("default_duration_min", opt.durationMin)
			option.Set("sort_order", opt.sortOrder)
			if err := app.Save(option); err != nil {
				return nil, nil, fmt.Errorf("seed option %s: %w", opt.label, err)
			}
			optionIDs[def.name] = append(optionIDs[def.name], option.Id)
		}
	}
	return serviceIDs, optionIDs, nil
}

func seedEngagements(app *pocketbase.PocketBase, companyID, clientID string, contactIDs []string, serviceIDs map[string]string, optionIDs map[string][]string) error {
	engagements, err := app.FindCollectionByNameOrId("engagements")
	if err != nil {
		return fmt.Errorf("engagements collection: %w", err)
	}

	integral := serviceIDs["Nettoyage intégral"]
	express := serviceIDs["Express extérieur"]

	upcoming := core.NewRecord(engagements)
	upcoming.Set("client", clientID)
	upcoming.Set("company", companyID)
	upcoming.Set("service", integral)
	upcoming.Set("option_ids", optionIDs["Nettoyage intégral"][:2])
	upcoming.Set("option_overrides", map[string]any{})
	upcoming.Set("scheduled_at", time.Now().AddDate(0, 0, 7))
	upcoming.Set("status", "planifié")
	upcoming.Set("kind", "service")
	upcoming.Set("support_type", "Voiture")
	upcoming.Set("support_detail", "Audi A4 break")
	upcoming.Set("additional_charge", 0)
	upcoming.Set("contact_ids", contactIDs[:1])
	upcoming.Set("send_history", []any{})
	if err := app.Save(upcoming); err != nil {
		return fmt.Errorf("seed upcoming engagement: %w", err)
	}

	invoiced := core.NewRecord(engagements)
	invoiced.Set("client", clientID)
	invoiced.Set("company", companyID)
	invoiced.Set("service", express)
	invoiced.Set("option_ids", optionIDs["Express extérieur"])
	invoiced.Set("option_overrides", map[string]any{})
	invoiced.Set("scheduled_at", time.Now().AddDate(0, -1, 0))
	invoiced.Set("status", "réalisé")
	invoiced.Set("kind", "facture")
	invoiced.Set("support_type", "Voiture")
	invoiced.Set("support_detail", "Clio V")
	invoiced.Set("additional_charge", 10)
	invoiced.Set("contact_ids", contactIDs[:1])
	invoiced.Set("send_history", []any{})
	invoiced.Set("invoice_number", fmt.Sprintf("FAC-%s-0001", time.Now().AddDate(0, -1, 0).Format("200601")))
	invoiced.Set("invoice_vat_mode", "enabled")
	if err := app.Save(invoiced); err != nil {
		return fmt.Errorf("seed invoiced engagement: %w", err)
	}

	return nil
}
