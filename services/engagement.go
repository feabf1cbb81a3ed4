package services

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// EngagementStatus values match the French labels used across the product.
type EngagementStatus string

const (
	StatusBrouillon EngagementStatus = "brouillon"
	StatusEnvoye    EngagementStatus = "envoyé"
	StatusPlanifie  EngagementStatus = "planifié"
	StatusRealise   EngagementStatus = "réalisé"
	StatusAnnule    EngagementStatus = "annulé"
)

// EngagementKind is the commercial nature of a job record.
type EngagementKind string

const (
	KindService EngagementKind = "service"
	KindDevis   EngagementKind = "devis"
	KindFacture EngagementKind = "facture"
)

// SupportType is the kind of item being detailed.
type SupportType string

const (
	SupportVoiture SupportType = "Voiture"
	SupportCanape  SupportType = "Canapé"
	SupportTextile SupportType = "Textile"
)

// SendRecord is one entry of the append-only send history of an engagement.
type SendRecord struct {
	ID         string   `json:"id"`
	SentAt     string   `json:"sentAt"`
	ContactIDs []string `json:"contactIds"`
	Subject    string   `json:"subject,omitempty"`
}

// Engagement is the decoded form of an engagements record: one scheduled or
// performed job, progressing from a bare service record to a quote to an
// invoice.
type Engagement struct {
	ID               string                    `json:"id"`
	ClientID         string                    `json:"clientId"`
	CompanyID        string                    `json:"companyId,omitempty"`
	ServiceID        string                    `json:"serviceId"`
	OptionIDs        []string                  `json:"optionIds"`
	OptionOverrides  map[string]OptionOverride `json:"optionOverrides"`
	ScheduledAt      time.Time                 `json:"scheduledAt"`
	Status           EngagementStatus          `json:"status"`
	Kind             EngagementKind            `json:"kind"`
	SupportType      SupportType               `json:"supportType"`
	SupportDetail    string                    `json:"supportDetail"`
	AdditionalCharge float64                   `json:"additionalCharge"`
	ContactIDs       []string                  `json:"contactIds"`
	SendHistory      []SendRecord              `json:"sendHistory"`
	InvoiceNumber    string                    `json:"invoiceNumber,omitempty"`
	InvoiceVatMode   VatMode                   `json:"invoiceVatMode,omitempty"`
	QuoteNumber      string                    `json:"quoteNumber,omitempty"`
	QuoteStatus      EngagementStatus          `json:"quoteStatus,omitempty"`
}

// EngagementFromRecord decodes an engagements record, including its JSON
// columns. Undecodable JSON columns are logged and left empty rather than
// failing the whole read.
func EngagementFromRecord(record *core.Record) *Engagement {
	e := &Engagement{
		ID:               record.Id,
		ClientID:         record.GetString("client"),
		CompanyID:        record.GetString("company"),
		ServiceID:        record.GetString("service"),
		ScheduledAt:      record.GetDateTime("scheduled_at").Time(),
		Status:           EngagementStatus(record.GetString("status")),
		Kind:             EngagementKind(record.GetString("kind")),
		SupportType:      SupportType(record.GetString("support_type")),
		SupportDetail:    record.GetString("support_detail"),
		AdditionalCharge: record.GetFloat("additional_charge"),
		InvoiceNumber:    record.GetString("invoice_number"),
		InvoiceVatMode:   VatMode(record.GetString("invoice_vat_mode")),
		QuoteNumber:      record.GetString("quote_number"),
		QuoteStatus:      EngagementStatus(record.GetString("quote_status")),
	}

	jsonFields := map[string]any{
		"option_ids":       &e.OptionIDs,
		"option_overrides": &e.OptionOverrides,
		"contact_ids":      &e.ContactIDs,
		"send_history":     &e.SendHistory,
	}
	for field, target := range jsonFields {
		if err := record.UnmarshalJSONField(field, target); err != nil {
			log.Printf("engagement: could not decode %s on %s: %v", field, record.Id, err)
		}
	}
	if e.OptionOverrides == nil {
		e.OptionOverrides = map[string]OptionOverride{}
	}
	return e
}

// ApplyToRecord writes the engagement fields back onto a record. Overrides
// are sanitized against the current option selection on every write.
func (e *Engagement) ApplyToRecord(record *core.Record) {
	record.Set("client", e.ClientID)
	record.Set("company", e.CompanyID)
	record.Set("service", e.ServiceID)
	record.Set("option_ids", e.OptionIDs)
	record.Set("option_overrides", SanitizeOverrides(e.OptionIDs, e.OptionOverrides))
	record.Set("scheduled_at", e.ScheduledAt)
	record.Set("status", string(e.Status))
	record.Set("kind", string(e.Kind))
	record.Set("support_type", string(e.SupportType))
	record.Set("support_detail", e.SupportDetail)
	record.Set("additional_charge", e.AdditionalCharge)
	record.Set("contact_ids", e.ContactIDs)
	record.Set("send_history", e.SendHistory)
	record.Set("invoice_number", e.InvoiceNumber)
	record.Set("invoice_vat_mode", string(e.InvoiceVatMode))
	record.Set("quote_number", e.QuoteNumber)
	record.Set("quote_status", string(e.QuoteStatus))
}

// CanTransitionKind reports whether a kind change is allowed. The forward
// paths are service → devis → facture and service → facture; once an
// engagement is an invoice it can never be demoted.
func CanTransitionKind(from, to EngagementKind) bool {
	if from == to {
		return true
	}
	switch from {
	case KindService:
		return to == KindDevis || to == KindFacture
	case KindDevis:
		return to == KindFacture
	default:
		return false
	}
}

// AppendSendRecord adds an entry to the send history and merges the
// recipients into the engagement's contact list. History is prepend-ordered,
// newest first, like the rest of the product displays it.
func (e *Engagement) AppendSendRecord(contactIDs []string, subject string, sentAt time.Time) SendRecord {
	record := SendRecord{
		ID:         fmt.Sprintf("es%d", sentAt.UnixMilli()),
		SentAt:     sentAt.UTC().Format(time.RFC3339),
		ContactIDs: contactIDs,
		Subject:    subject,
	}
	e.SendHistory = append([]SendRecord{record}, e.SendHistory...)

	seen := make(map[string]struct{}, len(e.ContactIDs))
	for _, id := range e.ContactIDs {
		seen[id] = struct{}{}
	}
	for _, id := range contactIDs {
		if _, ok := seen[id]; !ok {
			e.ContactIDs = append(e.ContactIDs, id)
			seen[id] = struct{}{}
		}
	}
	return record
}

// Recipients is the resolved email audience for a document send.
type Recipients struct {
	Emails     []string
	ContactIDs []string
}

// ResolveRecipients maps the engagement's contact selection to active
// contact emails. When no contacts were picked, the client's active
// billing-default contacts are used.
func ResolveRecipients(app *pocketbase.PocketBase, e *Engagement) Recipients {
	contacts, err := app.FindRecordsByFilter(
		"client_contacts",
		"client = {:clientId}",
		"-is_billing_default",
		0,
		0,
		map[string]any{"clientId": e.ClientID},
	)
	if err != nil {
		log.Printf("engagement: could not load contacts for client %s: %v", e.ClientID, err)
		return Recipients{}
	}

	active := make(map[string]*core.Record, len(contacts))
	var fallbackIDs []string
	for _, contact := range contacts {
		if !contact.GetBool("active") {
			continue
		}
		active[contact.Id] = contact
		if contact.GetBool("is_billing_default") {
			fallbackIDs = append(fallbackIDs, contact.Id)
		}
	}

	preferred := e.ContactIDs
	if len(preferred) == 0 {
		preferred = fallbackIDs
	}

	var result Recipients
	seenID := map[string]struct{}{}
	seenEmail := map[string]struct{}{}
	for _, id := range preferred {
		contact, ok := active[id]
		if !ok {
			continue
		}
		if _, dup := seenID[id]; dup {
			continue
		}
		seenID[id] = struct{}{}
		result.ContactIDs = append(result.ContactIDs, id)
		if email := contact.GetString("email"); email != "" {
			if _, dup := seenEmail[email]; !dup {
				seenEmail[email] = struct{}{}
				result.Emails = append(result.Emails, email)
			}
		}
	}
	return result
}
