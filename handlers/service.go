package handlers

import (
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

type servicePayload struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (p servicePayload) validate() error {
	return validation.Errors{
		"category": validation.Validate(p.Category, validation.Required, validation.In("Voiture", "Canapé", "Textile")),
		"name":     validation.Validate(p.Name, validation.Required, validation.Length(1, 200)),
	}.Filter()
}

func (p servicePayload) applyTo(record *core.Record) {
	record.Set("category", p.Category)
	record.Set("name", p.Name)
	record.Set("description", p.Description)
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	record.Set("active", active)
}

func HandleServiceList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("services", "", "category,name", 0, 0)
		if err != nil {
			log.Printf("service: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les services")
		}
		catalog := make([]*services.CatalogService, 0, len(records))
		for _, record := range records {
			catalog = append(catalog, services.LoadService(app, record.Id))
		}
		return e.JSON(http.StatusOK, catalog)
	}
}

func HandleServiceGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		service := services.LoadService(app, e.Request.PathValue("id"))
		if service == nil {
			return Error(e, http.StatusNotFound, "service introuvable")
		}
		return e.JSON(http.StatusOK, service)
	}
}

func HandleServiceCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload servicePayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("services")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("service: create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le service")
		}
		return e.JSON(http.StatusCreated, services.LoadService(app, record.Id))
	}
}

func HandleServiceUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("services", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "service introuvable")
		}
		var payload servicePayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("service: update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le service")
		}
		return e.JSON(http.StatusOK, services.LoadService(app, record.Id))
	}
}

func HandleServiceDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("services", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "service introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("service: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer le service")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

type optionPayload struct {
	Label              string  `json:"label"`
	Description        string  `json:"description"`
	UnitPriceHT        float64 `json:"unitPriceHt"`
	DefaultDurationMin int     `json:"defaultDurationMin"`
	SortOrder          int     `json:"sortOrder"`
}

func (p optionPayload) validate() error {
	return validation.Errors{
		"label":              validation.Validate(p.Label, validation.Required),
		"unitPriceHt":        validation.Validate(p.UnitPriceHT, validation.Min(0.0)),
		"defaultDurationMin": validation.Validate(p.DefaultDurationMin, validation.Min(0)),
	}.Filter()
}

func (p optionPayload) applyTo(record *core.Record) {
	record.Set("label", p.Label)
	record.Set("description", p.Description)
	record.Set("unit_price_ht", p.UnitPriceHT)
	record.Set("default_duration_min", p.DefaultDurationMin)
	record.Set("sort_order", p.SortOrder)
}

func HandleOptionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		service, err := app.FindRecordById("services", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "service introuvable")
		}
		var payload optionPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("service_options")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		record.Set("service", service.Id)
		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("service: option create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'option")
		}
		return e.JSON(http.StatusCreated, services.LoadService(app, service.Id))
	}
}

func HandleOptionUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("service_options", e.Request.PathValue("optionId"))
		if err != nil {
			return Error(e, http.StatusNotFound, "option introuvable")
		}
		var payload optionPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("service: option update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer l'option")
		}
		return e.JSON(http.StatusOK, services.LoadService(app, record.GetString("service")))
	}
}

func HandleOptionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("service_options", e.Request.PathValue("optionId"))
		if err != nil {
			return Error(e, http.StatusNotFound, "option introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("service: option delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer l'option")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
