package handlers

import (
	"log"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

type purchasePayload struct {
	CompanyID   string  `json:"companyId"`
	Vendor      string  `json:"vendor"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	AmountHT    float64 `json:"amountHt"`
	VatRate     float64 `json:"vatRate"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Recurring   bool    `json:"recurring"`
	Notes       string  `json:"notes"`
	VehicleID   string  `json:"vehicleId"`
	Kilometers  float64 `json:"kilometers"`
}

func (p purchasePayload) validate() error {
	categories := make([]any, len(services.PurchaseCategories))
	for i, c := range services.PurchaseCategories {
		categories[i] = c
	}
	statuses := make([]any, len(services.PurchaseStatuses))
	for i, s := range services.PurchaseStatuses {
		statuses[i] = s
	}
	return validation.Errors{
		"vendor":   validation.Validate(p.Vendor, validation.Required),
		"date":     validation.Validate(p.Date, validation.Required),
		"amountHt": validation.Validate(p.AmountHT, validation.Min(0.0)),
		"category": validation.Validate(p.Category, validation.In(append([]any{""}, categories...)...)),
		"status":   validation.Validate(p.Status, validation.In(append([]any{""}, statuses...)...)),
	}.Filter()
}

// applyTo writes the payload onto the record. The TTC amount is always
// recomputed from HT and rate, never taken from the client.
func (p purchasePayload) applyTo(record *core.Record) {
	record.Set("company", p.CompanyID)
	record.Set("vendor", p.Vendor)
	record.Set("reference", p.Reference)
	record.Set("description", p.Description)
	if parsed, err := time.Parse(time.RFC3339, p.Date); err == nil {
		record.Set("date", parsed)
	} else if parsed, err := time.Parse("2006-01-02", p.Date); err == nil {
		record.Set("date", parsed)
	}
	record.Set("amount_ht", p.AmountHT)
	record.Set("vat_rate", services.SanitizeVatRate(p.VatRate))
	record.Set("amount_ttc", services.ComputeAmountTTC(p.AmountHT, p.VatRate))
	if p.Category == "" {
		record.Set("category", "Autre")
	} else {
		record.Set("category", p.Category)
	}
	if p.Status == "" {
		record.Set("status", "Brouillon")
	} else {
		record.Set("status", p.Status)
	}
	record.Set("recurring", p.Recurring)
	record.Set("notes", p.Notes)
	record.Set("vehicle", p.VehicleID)
	record.Set("kilometers", p.Kilometers)
}

type purchaseView struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"companyId,omitempty"`
	Vendor      string  `json:"vendor"`
	Reference   string  `json:"reference,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	AmountHT    float64 `json:"amountHt"`
	VatRate     float64 `json:"vatRate"`
	AmountTTC   float64 `json:"amountTtc"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Recurring   bool    `json:"recurring"`
	Notes       string  `json:"notes,omitempty"`
	VehicleID   string  `json:"vehicleId,omitempty"`
	Kilometers  float64 `json:"kilometers,omitempty"`
}

func purchaseViewOf(record *core.Record) purchaseView {
	return purchaseView{
		ID:          record.Id,
		CompanyID:   record.GetString("company"),
		Vendor:      record.GetString("vendor"),
		Reference:   record.GetString("reference"),
		Description: record.GetString("description"),
		Date:        record.GetDateTime("date").Time().Format("2006-01-02"),
		AmountHT:    record.GetFloat("amount_ht"),
		VatRate:     record.GetFloat("vat_rate"),
		AmountTTC:   record.GetFloat("amount_ttc"),
		Category:    record.GetString("category"),
		Status:      record.GetString("status"),
		Recurring:   record.GetBool("recurring"),
		Notes:       record.GetString("notes"),
		VehicleID:   record.GetString("vehicle"),
		Kilometers:  record.GetFloat("kilometers"),
	}
}

func HandlePurchaseList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("purchases", "", "-date", 0, 0)
		if err != nil {
			log.Printf("purchase: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les achats")
		}
		views := make([]purchaseView, 0, len(records))
		for _, record := range records {
			views = append(views, purchaseViewOf(record))
		}
		return e.JSON(http.StatusOK, views)
	}
}

func HandlePurchaseGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("purchases", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "achat introuvable")
		}
		return e.JSON(http.StatusOK, purchaseViewOf(record))
	}
}

func HandlePurchaseCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload purchasePayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("purchases")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("purchase: create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'achat")
		}
		return e.JSON(http.StatusCreated, purchaseViewOf(record))
	}
}

func HandlePurchaseUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("purchases", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "achat introuvable")
		}
		var payload purchasePayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("purchase: update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'achat")
		}
		return e.JSON(http.StatusOK, purchaseViewOf(record))
	}
}

func HandlePurchaseDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("purchases", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "achat introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("purchase: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer l'achat")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
