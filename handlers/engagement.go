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

// engagementPayload is the create/update request body. Optional fields stay
// pointers so PATCH-style updates leave untouched columns alone.
type engagementPayload struct {
	ClientID         *string                              `json:"clientId"`
	CompanyID        *string                              `json:"companyId"`
	ServiceID        *string                              `json:"serviceId"`
	OptionIDs        *[]string                            `json:"optionIds"`
	OptionOverrides  *map[string]services.OptionOverride  `json:"optionOverrides"`
	ScheduledAt      *string                              `json:"scheduledAt"`
	Status           *string                              `json:"status"`
	Kind             *string                              `json:"kind"`
	SupportType      *string                              `json:"supportType"`
	SupportDetail    *string                              `json:"supportDetail"`
	AdditionalCharge *float64                             `json:"additionalCharge"`
	ContactIDs       *[]string                            `json:"contactIds"`
	InvoiceVatMode   *string                              `json:"invoiceVatMode"`
}

func (p engagementPayload) validateCreate() error {
	return validation.Errors{
		"clientId":    validation.Validate(p.ClientID, validation.NotNil),
		"serviceId":   validation.Validate(p.ServiceID, validation.NotNil),
		"scheduledAt": validation.Validate(p.ScheduledAt, validation.NotNil),
		"status":      validation.Validate(deref(p.Status), validation.In("", "brouillon", "envoyé", "planifié", "réalisé", "annulé")),
		"kind":        validation.Validate(deref(p.Kind), validation.In("", "service", "devis")),
		"supportType": validation.Validate(deref(p.SupportType), validation.In("", "Voiture", "Canapé", "Textile")),
	}.Filter()
}

func (p engagementPayload) validateUpdate() error {
	return validation.Errors{
		"status":         validation.Validate(deref(p.Status), validation.In("", "brouillon", "envoyé", "planifié", "réalisé", "annulé")),
		"kind":           validation.Validate(deref(p.Kind), validation.In("", "service", "devis", "facture")),
		"supportType":    validation.Validate(deref(p.SupportType), validation.In("", "Voiture", "Canapé", "Textile")),
		"invoiceVatMode": validation.Validate(deref(p.InvoiceVatMode), validation.In("", "enabled", "disabled")),
	}.Filter()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// engagementView is the JSON list/detail shape: the decoded record plus its
// recomputed totals and display document number.
type engagementView struct {
	*services.Engagement
	DocumentNumber string          `json:"documentNumber"`
	Totals         services.Totals `json:"totals"`
}

func viewOf(app *pocketbase.PocketBase, e *services.Engagement) engagementView {
	return engagementView{
		Engagement:     e,
		DocumentNumber: services.DocumentNumberFor(e),
		Totals:         services.EngagementTotals(app, e),
	}
}

func HandleEngagementList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("engagements", "", "-scheduled_at", 0, 0)
		if err != nil {
			log.Printf("engagement: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les prestations")
		}

		views := make([]engagementView, 0, len(records))
		for _, record := range records {
			views = append(views, viewOf(app, services.EngagementFromRecord(record)))
		}
		return e.JSON(http.StatusOK, views)
	}
}

func HandleEngagementGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("engagements", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "prestation introuvable")
		}
		return e.JSON(http.StatusOK, viewOf(app, services.EngagementFromRecord(record)))
	}
}

func HandleEngagementCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload engagementPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validateCreate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		collection, err := app.FindCollectionByNameOrId("engagements")
		if err != nil {
			return Error(e, http.StatusInternalServerError, "collection indisponible")
		}

		engagement := &services.Engagement{
			ClientID:      deref(payload.ClientID),
			CompanyID:     deref(payload.CompanyID),
			ServiceID:     deref(payload.ServiceID),
			Status:        services.StatusPlanifie,
			Kind:          services.KindService,
			SupportType:   services.SupportVoiture,
			SupportDetail: deref(payload.SupportDetail),
		}
		if payload.Kind != nil && *payload.Kind != "" {
			engagement.Kind = services.EngagementKind(*payload.Kind)
		}
		applyPayload(engagement, payload)
		if engagement.ScheduledAt.IsZero() {
			engagement.ScheduledAt = time.Now()
		}

		record := core.NewRecord(collection)
		engagement.ApplyToRecord(record)
		if err := app.Save(record); err != nil {
			log.Printf("engagement: create failed: %v", err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer la prestation")
		}
		return e.JSON(http.StatusCreated, viewOf(app, services.EngagementFromRecord(record)))
	}
}

func HandleEngagementUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("engagements", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "prestation introuvable")
		}

		var payload engagementPayload
		if err := e.BindBody(&payload); err != nil {
			return Error(e, http.StatusBadRequest, "corps de requête invalide")
		}
		if err := payload.validateUpdate(); err != nil {
			return ValidationError(e, validationFields(err))
		}

		engagement := services.EngagementFromRecord(record)

		if payload.Kind != nil {
			next := services.EngagementKind(*payload.Kind)
			if !services.CanTransitionKind(engagement.Kind, next) {
				return Error(e, http.StatusConflict, "transition de type de prestation interdite")
			}
			engagement.Kind = next
		}
		applyPayload(engagement, payload)

		engagement.ApplyToRecord(record)
		if err := app.Save(record); err != nil {
			log.Printf("engagement: update %s failed: %v", record.Id, err)
			return Error(e, http.StatusBadRequest, "impossible d'enregistrer la prestation")
		}
		return e.JSON(http.StatusOK, viewOf(app, services.EngagementFromRecord(record)))
	}
}

func HandleEngagementDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("engagements", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "prestation introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("engagement: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer la prestation")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleEngagementTotals returns the recomputed totals with the VAT
// breakdown at the current presentation settings.
func HandleEngagementTotals(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("engagements", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "prestation introuvable")
		}
		engagement := services.EngagementFromRecord(record)

		totals := services.EngagementTotals(app, engagement)
		globalVat := services.LoadGlobalVat(app)
		company := services.LoadCompanyFor(app, engagement)
		vatEnabled := engagement.InvoiceVatMode.Resolve(company.VatSetting(), globalVat.Enabled)

		return e.JSON(http.StatusOK, map[string]any{
			"totals":    totals,
			"breakdown": services.ComputeVatBreakdown(totals, globalVat.Rate, vatEnabled),
		})
	}
}

// applyPayload copies every present payload field onto the engagement and
// re-sanitizes the overrides against the (possibly new) option selection.
func applyPayload(engagement *services.Engagement, payload engagementPayload) {
	if payload.ClientID != nil {
		engagement.ClientID = *payload.ClientID
	}
	if payload.CompanyID != nil {
		engagement.CompanyID = *payload.CompanyID
	}
	if payload.ServiceID != nil {
		engagement.ServiceID = *payload.ServiceID
	}
	if payload.OptionIDs != nil {
		engagement.OptionIDs = *payload.OptionIDs
	}
	if payload.OptionOverrides != nil {
		engagement.OptionOverrides = *payload.OptionOverrides
	}
	if payload.ScheduledAt != nil {
		if parsed, err := time.Parse(time.RFC3339, *payload.ScheduledAt); err == nil {
			engagement.ScheduledAt = parsed
		}
	}
	if payload.Status != nil && *payload.Status != "" {
		engagement.Status = services.EngagementStatus(*payload.Status)
	}
	if payload.SupportType != nil && *payload.SupportType != "" {
		engagement.SupportType = services.SupportType(*payload.SupportType)
	}
	if payload.SupportDetail != nil {
		engagement.SupportDetail = *payload.SupportDetail
	}
	if payload.AdditionalCharge != nil && *payload.AdditionalCharge >= 0 {
		engagement.AdditionalCharge = *payload.AdditionalCharge
	}
	if payload.ContactIDs != nil {
		engagement.ContactIDs = *payload.ContactIDs
	}
	if payload.InvoiceVatMode != nil {
		engagement.InvoiceVatMode = services.VatMode(*payload.InvoiceVatMode)
	}
	engagement.OptionOverrides = services.SanitizeOverrides(engagement.OptionIDs, engagement.OptionOverrides)
}

// validationFields flattens an ozzo validation.Errors into a string map.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["_"] = err.Error()
	}
	return fields
}
