package handlers

import (
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

type companyPayload struct {
	Name       string `json:"name"`
	LogoURL    string `json:"logoUrl"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Website    string `json:"website"`
	Siret      string `json:"siret"`
	VatNumber  string `json:"vatNumber"`
	IBAN       string `json:"iban"`
	BIC        string `json:"bic"`
	LegalNotes string `json:"legalNotes"`
	VatMode    string `json:"vatMode"`
	IsDefault  bool   `json:"isDefault"`
}

func (p companyPayload) validate() error {
	return validation.Errors{
		"name":    validation.Validate(p.Name, validation.Required, validation.Length(1, 200)),
		"email":   validation.Validate(p.Email, is.EmailFormat),
		"vatMode": validation.Validate(p.VatMode, validation.In("", "enabled", "disabled")),
	}.Filter()
}

func (p companyPayload) applyTo(record *core.Record) {
	record.Set("name", p.Name)
	record.Set("logo_url", p.LogoURL)
	record.Set("address", p.Address)
	record.Set("postal_code", p.PostalCode)
	record.Set("city", p.City)
	record.Set("country", p.Country)
	record.Set("phone", p.Phone)
	record.Set("email", p.Email)
	record.Set("website", p.Website)
	record.Set("siret", p.Siret)
	record.Set("vat_number", p.VatNumber)
	record.Set("iban", p.IBAN)
	record.Set("bic", p.BIC)
	record.Set("legal_notes", p.LegalNotes)
	record.Set("vat_mode", p.VatMode)
	record.Set("is_default", p.IsDefault)
}

func HandleCompanyList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("companies", "", "name", 0, 0)
		if err != nil {
			log.Printf("company: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les entreprises")
		}
		companies := make([]*services.Company, 0, len(records))
		for _, record := range records {
			companies = append(companies, services.CompanyFromRecord(record))
		}
		return e.JSON(http.StatusOK, companies)
	}
}

func HandleCompanyGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("companies", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "entreprise introuvable")
		}
		return e.JSON(http.StatusOK, services.CompanyFromRecord(record))
	}
}

func HandleCompanyCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload companyPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("companies")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("company: create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'entreprise")
		}
		return e.JSON(http.StatusCreated, services.CompanyFromRecord(record))
	}
}

func HandleCompanyUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("companies", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "entreprise introuvable")
		}
		var payload companyPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("company: update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'entreprise")
		}
		return e.JSON(http.StatusOK, services.CompanyFromRecord(record))
	}
}

func HandleCompanyDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("companies", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "entreprise introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("company: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer l'entreprise")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
