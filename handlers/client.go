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

type clientPayload struct {
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Siret   string   `json:"siret"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

func (p clientPayload) validate() error {
	return validation.Errors{
		"type":   validation.Validate(p.Type, validation.Required, validation.In("company", "individual")),
		"name":   validation.Validate(p.Name, validation.Required, validation.Length(1, 200)),
		"email":  validation.Validate(p.Email, is.EmailFormat),
		"status": validation.Validate(p.Status, validation.In("", "Actif", "Prospect")),
	}.Filter()
}

func (p clientPayload) applyTo(record *core.Record) {
	record.Set("type", p.Type)
	record.Set("name", p.Name)
	record.Set("siret", p.Siret)
	record.Set("email", p.Email)
	record.Set("phone", p.Phone)
	record.Set("address", p.Address)
	record.Set("city", p.City)
	if p.Status == "" {
		record.Set("status", "Prospect")
	} else {
		record.Set("status", p.Status)
	}
	record.Set("tags", p.Tags)
}

func HandleClientList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("clients", "", "name", 0, 0)
		if err != nil {
			log.Printf("client: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les clients")
		}
		clients := make([]*services.Client, 0, len(records))
		for _, record := range records {
			clients = append(clients, services.ClientFromRecord(record))
		}
		return e.JSON(http.StatusOK, clients)
	}
}

func HandleClientGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("clients", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "client introuvable")
		}
		return e.JSON(http.StatusOK, services.ClientFromRecord(record))
	}
}

func HandleClientCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload clientPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("clients")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("client: create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le client")
		}
		return e.JSON(http.StatusCreated, services.ClientFromRecord(record))
	}
}

func HandleClientUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("clients", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "client introuvable")
		}
		var payload clientPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		payload.applyTo(record)
		if err := app.Save(record); err != nil {
			log.Printf("client: update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le client")
		}
		return e.JSON(http.StatusOK, services.ClientFromRecord(record))
	}
}

func HandleClientDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("clients", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "client introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("client: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer le client")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleClientRevenue reports the cumulative revenue of a client across its
// non-cancelled engagements.
func HandleClientRevenue(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("clients", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "client introuvable")
		}
		revenue, err := services.ClientRevenue(app, record.Id)
		if err != nil {
			log.Printf("client: revenue for %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de calculer le chiffre d'affaires")
		}
		return e.JSON(http.StatusOK, map[string]any{
			"clientId": record.Id,
			"revenue":  revenue,
		})
	}
}

type contactPayload struct {
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	Mobile           string   `json:"mobile"`
	Roles            []string `json:"roles"`
	IsBillingDefault bool     `json:"isBillingDefault"`
	Active           *bool    `json:"active"`
}

func (p contactPayload) validate() error {
	return validation.Errors{
		"lastName": validation.Validate(p.LastName, validation.Required),
		"email":    validation.Validate(p.Email, is.EmailFormat),
	}.Filter()
}

type contactView struct {
	ID               string   `json:"id"`
	ClientID         string   `json:"clientId"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	Mobile           string   `json:"mobile"`
	Roles            []string `json:"roles"`
	IsBillingDefault bool     `json:"isBillingDefault"`
	Active           bool     `json:"active"`
}

func contactViewOf(record *core.Record) contactView {
	view := contactView{
		ID:               record.Id,
		ClientID:         record.GetString("client"),
		FirstName:        record.GetString("first_name"),
		LastName:         record.GetString("last_name"),
		Email:            record.GetString("email"),
		Mobile:           record.GetString("mobile"),
		IsBillingDefault: record.GetBool("is_billing_default"),
		Active:           record.GetBool("active"),
	}
	if err := record.UnmarshalJSONField("roles", &view.Roles); err != nil {
		log.Printf("client: contact %s roles decode failed: %v", record.Id, err)
	}
	return view
}

func HandleContactList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter(
			"client_contacts",
			"client = {:clientId}",
			"last_name",
			0,
			0,
			map[string]any{"clientId": e.Request.PathValue("id")},
		)
		if err != nil {
			log.Printf("client: contact list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les contacts")
		}
		views := make([]contactView, 0, len(records))
		for _, record := range records {
			views = append(views, contactViewOf(record))
		}
		return e.JSON(http.StatusOK, views)
	}
}

func HandleContactCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		client, err := app.FindRecordById("clients", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "client introuvable")
		}
		var payload contactPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("client_contacts")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}
		record := core.NewRecord(collection)
		record.Set("client", client.Id)
		applyContact(record, payload)
		if err := app.Save(record); err != nil {
			log.Printf("client: contact create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le contact")
		}
		return e.JSON(http.StatusCreated, contactViewOf(record))
	}
}

func HandleContactUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("client_contacts", e.Request.PathValue("contactId"))
		if err != nil {
			return Error(e, http.StatusNotFound, "contact introuvable")
		}
		var payload contactPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		applyContact(record, payload)
		if err := app.Save(record); err != nil {
			log.Printf("client: contact update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer le contact")
		}
		return e.JSON(http.StatusOK, contactViewOf(record))
	}
}

func HandleContactDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("client_contacts", e.Request.PathValue("contactId"))
		if err != nil {
			return Error(e, http.StatusNotFound, "contact introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("client: contact delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer le contact")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

func applyContact(record *core.Record, payload contactPayload) {
	record.Set("first_name", payload.FirstName)
	record.Set("last_name", payload.LastName)
	record.Set("email", payload.Email)
	record.Set("mobile", payload.Mobile)
	record.Set("roles", payload.Roles)
	record.Set("is_billing_default", payload.IsBillingDefault)
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	record.Set("active", active)
}
