package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Company mirrors a companies record: the issuing legal entity on documents.
type Company struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LogoURL       string `json:"logoUrl,omitempty"`
	Address       string `json:"address"`
	PostalCode    string `json:"postalCode"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website,omitempty"`
	Siret         string `json:"siret"`
	VatNumber     string `json:"vatNumber,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	BIC           string `json:"bic,omitempty"`
	LegalNotes    string `json:"legalNotes,omitempty"`
	VatEnabled    bool   `json:"vatEnabled"`
	HasVatSetting bool   `json:"-"`
	IsDefault     bool   `json:"isDefault"`
}

// VatSetting returns the company's VAT preference as the nilable value the
// fallback chain expects; nil when the company never recorded one.
func (c *Company) VatSetting() *bool {
	if c == nil || !c.HasVatSetting {
		return nil
	}
	return &c.VatEnabled
}

// Client mirrors a clients record.
type Client struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // company | individual
	Name    string `json:"name"`
	Siret   string `json:"siret,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Status  string `json:"status"`
}

// CatalogService mirrors a services record with its options resolved.
type CatalogService struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	Options     []CatalogOption `json:"options"`
}

func CompanyFromRecord(record *core.Record) *Company {
	return &Company{
		ID:            record.Id,
		Name:          record.GetString("name"),
		LogoURL:       record.GetString("logo_url"),
		Address:       record.GetString("address"),
		PostalCode:    record.GetString("postal_code"),
		City:          record.GetString("city"),
		Country:       record.GetString("country"),
		Phone:         record.GetString("phone"),
		Email:         record.GetString("email"),
		Website:       record.GetString("website"),
		Siret:         record.GetString("siret"),
		VatNumber:     record.GetString("vat_number"),
		IBAN:          record.GetString("iban"),
		BIC:           record.GetString("bic"),
		LegalNotes:    record.GetString("legal_notes"),
		VatEnabled:    record.GetString("vat_mode") != "disabled",
		HasVatSetting: record.GetString("vat_mode") != "",
		IsDefault:     record.GetBool("is_default"),
	}
}

func ClientFromRecord(record *core.Record) *Client {
	return &Client{
		ID:      record.Id,
		Type:    record.GetString("type"),
		Name:    record.GetString("name"),
		Siret:   record.GetString("siret"),
		Email:   record.GetString("email"),
		Phone:   record.GetString("phone"),
		Address: record.GetString("address"),
		City:    record.GetString("city"),
		Status:  record.GetString("status"),
	}
}

// LoadService fetches a services record and its options, ordered by their
// sort position. Returns nil (not an error) when the service is gone so
// totals can degrade gracefully.
func LoadService(app *pocketbase.PocketBase, serviceID string) *CatalogService {
	record, err := app.FindRecordById("services", serviceID)
	if err != nil {
		return nil
	}

	service := &CatalogService{
		ID:          record.Id,
		Category:    record.GetString("category"),
		Name:        record.GetString("name"),
		Description: record.GetString("description"),
		Active:      record.GetBool("active"),
	}

	options, err := app.FindRecordsByFilter(
		"service_options",
		"service = {:serviceId}",
		"sort_order",
		0,
		0,
		map[string]any{"serviceId": serviceID},
	)
	if err != nil {
		log.Printf("store: could not load options for service %s: %v", serviceID, err)
		return service
	}
	for _, option := range options {
		service.Options = append(service.Options, CatalogOption{
			ID:                 option.Id,
			Label:              option.GetString("label"),
			Description:        option.GetString("description"),
			UnitPriceHT:        option.GetFloat("unit_price_ht"),
			DefaultDurationMin: int(option.GetFloat("default_duration_min")),
		})
	}
	return service
}

// LoadCompanyFor resolves the issuing company of an engagement: its pinned
// company when set, otherwise the default company.
func LoadCompanyFor(app *pocketbase.PocketBase, e *Engagement) *Company {
	if e.CompanyID != "" {
		if record, err := app.FindRecordById("companies", e.CompanyID); err == nil {
			return CompanyFromRecord(record)
		}
	}
	records, err := app.FindRecordsByFilter("companies", "is_default = true", "", 1, 0)
	if err != nil || len(records) == 0 {
		return nil
	}
	return CompanyFromRecord(records[0])
}

// GlobalVatConfig is the application-wide VAT default, the last link of the
// fallback chain.
type GlobalVatConfig struct {
	Enabled bool
	Rate    float64
}

// LoadGlobalVat reads the settings singleton. Absent settings default to
// 20% enabled (the seeded French rate).
func LoadGlobalVat(app *pocketbase.PocketBase) GlobalVatConfig {
	records, err := app.FindRecordsByFilter("settings", "", "", 1, 0)
	if err != nil || len(records) == 0 {
		return GlobalVatConfig{Enabled: true, Rate: 20}
	}
	return GlobalVatConfig{
		Enabled: records[0].GetBool("vat_enabled"),
		Rate:    SanitizeVatRate(records[0].GetFloat("vat_rate")),
	}
}

// EngagementTotals recomputes the derived totals for an engagement from its
// current catalog state.
func EngagementTotals(app *pocketbase.PocketBase, e *Engagement) Totals {
	service := LoadService(app, e.ServiceID)
	if service == nil {
		return Totals{Surcharge: maxZero(e.AdditionalCharge)}
	}
	return ComputeTotals(service.Options, e.OptionIDs, e.OptionOverrides, e.AdditionalCharge)
}

// CollectDocumentNumbers gathers every stored number of one kind across all
// engagements, the input of the monthly sequence scan.
func CollectDocumentNumbers(app *pocketbase.PocketBase, field string) ([]string, error) {
	records, err := app.FindAllRecords("engagements")
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	var numbers []string
	for _, record := range records {
		if number := record.GetString(field); number != "" {
			numbers = append(numbers, number)
		}
	}
	return numbers, nil
}

func maxZero(value float64) float64 {
	if !isFinite(value) || value < 0 {
		return 0
	}
	return value
}
