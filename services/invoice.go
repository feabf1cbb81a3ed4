package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// BrandName appears in email subjects and bodies.
const BrandName = "Wash&Go"

// Expected business conditions that block document generation. These map to
// user-facing messages, not crashes.
var (
	ErrServiceNotFound   = errors.New("service introuvable pour cette prestation")
	ErrClientNotFound    = errors.New("client introuvable pour cette prestation")
	ErrCompanyRequired   = errors.New("associez une entreprise avant de générer un document")
	ErrCompanyIncomplete = errors.New("complétez le nom et le SIRET de l'entreprise")
	ErrClientIncomplete  = errors.New("le client doit avoir un nom")
	ErrNoBillableItems   = errors.New("sélectionnez au moins une prestation à facturer")
	ErrKindTransition    = errors.New("transition de type de prestation interdite")
)

// DocumentMode selects what happens with the rendered document.
type DocumentMode string

const (
	ModeDownload DocumentMode = "download"
	ModePrint    DocumentMode = "print"
	ModeEmail    DocumentMode = "email"
)

// EmailOutcome reports the email leg of a generate-and-send action.
type EmailOutcome struct {
	Status      string   `json:"status"` // sent | fallback | error
	Message     string   `json:"message,omitempty"`
	ComposerURL string   `json:"composerUrl,omitempty"`
	Recipients  []string `json:"recipients,omitempty"`
}

// GenerateResult is the outcome of an invoice or quote generation.
type GenerateResult struct {
	Engagement     *Engagement   `json:"engagement"`
	DocumentNumber string        `json:"documentNumber"`
	Filename       string        `json:"filename"`
	PDF            []byte        `json:"-"`
	Totals         Totals        `json:"totals"`
	Breakdown      VatBreakdown  `json:"breakdown"`
	Email          *EmailOutcome `json:"email,omitempty"`
}

// GenerateInvoice renders the invoice for an engagement, assigns its number
// on first generation, archives the document and promotes the engagement to
// kind facture with status réalisé. Regeneration reuses the stored number
// and never advances the sequence.
func GenerateInvoice(app *pocketbase.PocketBase, engagementID string, mode DocumentMode) (*GenerateResult, error) {
	record, err := app.FindRecordById("engagements", engagementID)
	if err != nil {
		return nil, fmt.Errorf("engagement %s: %w", engagementID, err)
	}
	e := EngagementFromRecord(record)

	if !CanTransitionKind(e.Kind, KindFacture) {
		return nil, ErrKindTransition
	}

	ctx, err := loadDocumentContext(app, e)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	vatEnabled := e.InvoiceVatMode.Resolve(ctx.company.VatSetting(), ctx.globalVat.Enabled)

	number := e.InvoiceNumber
	if number == "" {
		numbers, err := CollectDocumentNumbers(app, "invoice_number")
		if err != nil {
			return nil, err
		}
		number = NextDocumentNumber(numbers, InvoicePrefix, issueDate)
	}

	breakdown := ComputeVatBreakdown(ctx.totals, ctx.globalVat.Rate, vatEnabled)

	pdf, err := GenerateDocumentPDF(DocumentData{
		Title:        "FACTURE",
		Number:       number,
		IssueDate:    issueDate,
		ServiceDate:  e.ScheduledAt,
		Company:      ctx.company,
		Client:       ctx.client,
		ServiceName:  ctx.service.Name,
		SupportLabel: supportLabel(e),
		Lines:        ctx.lines,
		Surcharge:    ctx.totals.Surcharge,
		SubtotalHT:   breakdown.SubtotalHT,
		VatEnabled:   vatEnabled,
		VatRateLabel: FormatVatRateLabel(ctx.globalVat.Rate),
		VatAmount:    breakdown.VatAmount,
		TotalTTC:     breakdown.TotalTTC,
		LegalNotes:   ctx.company.LegalNotes,
	})
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", number, err)
	}

	// Archive failures are logged only: the PDF was already produced and
	// the user-visible artifact still proceeds (accepted shortcut).
	archiveDocument(app, e, ctx, "Facture", number, issueDate, breakdown, pdf)

	e.Status = StatusRealise
	e.Kind = KindFacture
	e.CompanyID = ctx.company.ID
	e.InvoiceNumber = number
	e.InvoiceVatMode = VatModeFor(vatEnabled)
	e.ApplyToRecord(record)
	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save engagement %s: %w", e.ID, err)
	}

	result := &GenerateResult{
		Engagement:     e,
		DocumentNumber: number,
		Filename:       number + ".pdf",
		PDF:            pdf,
		Totals:         ctx.totals,
		Breakdown:      breakdown,
	}

	if mode == ModeEmail {
		subject := fmt.Sprintf("%s – Facture %s", BrandName, number)
		body := fmt.Sprintf(
			"Bonjour,\n\nVeuillez trouver ci-joint la facture %s d'un montant de %s.\n\nCordialement,\n%s",
			number, FormatEUR(RoundCurrency(breakdown.TotalTTC)), ctx.company.Name,
		)
		result.Email = dispatchDocument(app, record, e, subject, body, result)
	}

	return result, nil
}

// GenerateQuote renders the quote for an engagement. A service-kind
// engagement is promoted to devis; invoices can no longer produce quotes.
// Sending by email forces both status and quote status to envoyé.
func GenerateQuote(app *pocketbase.PocketBase, engagementID string, mode DocumentMode) (*GenerateResult, error) {
	record, err := app.FindRecordById("engagements", engagementID)
	if err != nil {
		return nil, fmt.Errorf("engagement %s: %w", engagementID, err)
	}
	e := EngagementFromRecord(record)

	if !CanTransitionKind(e.Kind, KindDevis) {
		return nil, ErrKindTransition
	}

	ctx, err := loadDocumentContext(app, e)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	// Quotes carry no per-document VAT override.
	vatEnabled := VatInherit.Resolve(ctx.company.VatSetting(), ctx.globalVat.Enabled)

	number := e.QuoteNumber
	if number == "" {
		numbers, err := CollectDocumentNumbers(app, "quote_number")
		if err != nil {
			return nil, err
		}
		number = NextDocumentNumber(numbers, QuotePrefix, issueDate)
	}

	breakdown := ComputeVatBreakdown(ctx.totals, ctx.globalVat.Rate, vatEnabled)

	pdf, err := GenerateDocumentPDF(DocumentData{
		Title:        "DEVIS",
		Number:       number,
		IssueDate:    issueDate,
		ServiceDate:  e.ScheduledAt,
		Company:      ctx.company,
		Client:       ctx.client,
		ServiceName:  ctx.service.Name,
		SupportLabel: supportLabel(e),
		Lines:        ctx.lines,
		Surcharge:    ctx.totals.Surcharge,
		SubtotalHT:   breakdown.SubtotalHT,
		VatEnabled:   vatEnabled,
		VatRateLabel: FormatVatRateLabel(ctx.globalVat.Rate),
		VatAmount:    breakdown.VatAmount,
		TotalTTC:     breakdown.TotalTTC,
		ValidityNote: "30 jours",
		LegalNotes:   ctx.company.LegalNotes,
	})
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", number, err)
	}

	archiveDocument(app, e, ctx, "Devis", number, issueDate, breakdown, pdf)

	e.Kind = KindDevis
	e.CompanyID = ctx.company.ID
	e.QuoteNumber = number
	if e.Status == "" {
		e.Status = StatusBrouillon
	}
	if e.QuoteStatus == "" {
		e.QuoteStatus = StatusBrouillon
	}
	if mode == ModeEmail {
		e.Status = StatusEnvoye
		e.QuoteStatus = StatusEnvoye
	}
	e.ApplyToRecord(record)
	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save engagement %s: %w", e.ID, err)
	}

	result := &GenerateResult{
		Engagement:     e,
		DocumentNumber: number,
		Filename:       number + ".pdf",
		PDF:            pdf,
		Totals:         ctx.totals,
		Breakdown:      breakdown,
	}

	if mode == ModeEmail {
		subject := fmt.Sprintf("%s – Devis %s", BrandName, number)
		body := fmt.Sprintf(
			"Bonjour,\n\nVeuillez trouver ci-joint le devis %s d'un montant de %s, valable 30 jours.\n\nCordialement,\n%s",
			number, FormatEUR(RoundCurrency(breakdown.TotalTTC)), ctx.company.Name,
		)
		result.Email = dispatchDocument(app, record, e, subject, body, result)
	}

	return result, nil
}

// documentContext bundles the resolved references an invoice or quote needs.
type documentContext struct {
	service   *CatalogService
	client    *Client
	company   *Company
	totals    Totals
	lines     []DocumentLine
	globalVat GlobalVatConfig
}

func loadDocumentContext(app *pocketbase.PocketBase, e *Engagement) (*documentContext, error) {
	service := LoadService(app, e.ServiceID)
	if service == nil {
		return nil, ErrServiceNotFound
	}

	clientRecord, err := app.FindRecordById("clients", e.ClientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	client := ClientFromRecord(clientRecord)

	company := LoadCompanyFor(app, e)
	if company == nil {
		return nil, ErrCompanyRequired
	}

	selected := make(map[string]struct{}, len(e.OptionIDs))
	for _, id := range e.OptionIDs {
		selected[id] = struct{}{}
	}
	var lines []DocumentLine
	for _, option := range service.Options {
		if _, ok := selected[option.ID]; !ok {
			continue
		}
		var override *OptionOverride
		if value, ok := e.OptionOverrides[option.ID]; ok {
			override = &value
		}
		resolved := ResolveOption(option, override)
		lines = append(lines, DocumentLine{
			Label:     option.Label,
			Detail:    option.Description,
			Quantity:  resolved.Quantity,
			UnitPrice: resolved.UnitPriceHT,
			Total:     RoundCurrency(resolved.UnitPriceHT * float64(resolved.Quantity)),
		})
	}
	if len(lines) == 0 && e.AdditionalCharge <= 0 {
		return nil, ErrNoBillableItems
	}

	if strings.TrimSpace(company.Name) == "" || strings.TrimSpace(company.Siret) == "" {
		return nil, ErrCompanyIncomplete
	}
	if strings.TrimSpace(client.Name) == "" {
		return nil, ErrClientIncomplete
	}

	return &documentContext{
		service:   service,
		client:    client,
		company:   company,
		totals:    ComputeTotals(service.Options, e.OptionIDs, e.OptionOverrides, e.AdditionalCharge),
		lines:     lines,
		globalVat: LoadGlobalVat(app),
	}, nil
}

func supportLabel(e *Engagement) string {
	detail := strings.TrimSpace(e.SupportDetail)
	if detail == "" {
		return string(e.SupportType)
	}
	return fmt.Sprintf("%s – %s", e.SupportType, detail)
}

// dispatchDocument sends the rendered document by email and updates the
// engagement's send history. A not-configured SMTP stack degrades to a
// composer URL and still counts as sent for history purposes; transport and
// server errors do not.
func dispatchDocument(app *pocketbase.PocketBase, record *core.Record, e *Engagement, subject, body string, result *GenerateResult) *EmailOutcome {
	recipients := ResolveRecipients(app, e)
	if len(recipients.Emails) == 0 {
		return &EmailOutcome{Status: "error", Message: "Aucun contact avec une adresse e-mail valide."}
	}

	sendResult := SendDocumentEmail(app, recipients.Emails, subject, body, &EmailAttachment{
		Filename:    result.Filename,
		Content:     result.PDF,
		ContentType: "application/pdf",
	})

	switch {
	case sendResult.OK:
		recordSend(app, record, e, recipients, subject)
		return &EmailOutcome{Status: "sent", Recipients: recipients.Emails}
	case sendResult.Reason == ReasonNotConfigured:
		recordSend(app, record, e, recipients, subject)
		return &EmailOutcome{
			Status:      "fallback",
			Message:     "SMTP indisponible – utilisez votre messagerie pour envoyer le document.",
			ComposerURL: BuildComposerURL(recipients.Emails, subject, body),
			Recipients:  recipients.Emails,
		}
	default:
		return &EmailOutcome{Status: "error", Message: sendResult.Message}
	}
}

func recordSend(app *pocketbase.PocketBase, record *core.Record, e *Engagement, recipients Recipients, subject string) {
	e.AppendSendRecord(recipients.ContactIDs, subject, time.Now())
	e.ApplyToRecord(record)
	if err := app.Save(record); err != nil {
		log.Printf("invoice: could not persist send history for %s: %v", e.ID, err)
	}
}

// archiveDocument inserts a documents record with the rendered PDF attached.
// Failures are logged, not surfaced: the artifact was already delivered.
func archiveDocument(app *pocketbase.PocketBase, e *Engagement, ctx *documentContext, docType, number string, issueDate time.Time, breakdown VatBreakdown, pdf []byte) {
	collection, err := app.FindCollectionByNameOrId("documents")
	if err != nil {
		log.Printf("invoice: documents collection unavailable: %v", err)
		return
	}

	doc := core.NewRecord(collection)
	doc.Set("engagement", e.ID)
	doc.Set("number", number)
	doc.Set("type", docType)
	doc.Set("client", ctx.client.ID)
	doc.Set("company", ctx.company.ID)
	doc.Set("issue_date", issueDate)
	doc.Set("subtotal_ht", RoundCurrency(breakdown.SubtotalHT))
	doc.Set("vat_amount", breakdown.VatAmount)
	doc.Set("total_ttc", RoundCurrency(breakdown.TotalTTC))
	doc.Set("vat_enabled", breakdown.VatEnabled)
	doc.Set("vat_rate", breakdown.VatRate)

	if file, err := filesystem.NewFileFromBytes(pdf, number+".pdf"); err != nil {
		log.Printf("invoice: could not wrap PDF for %s: %v", number, err)
	} else {
		doc.Set("pdf", file)
	}

	if err := app.Save(doc); err != nil {
		log.Printf("invoice: could not archive document %s: %v", number, err)
	}
}
