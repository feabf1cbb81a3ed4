package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// documentView exposes an archived document's metadata. The PDF itself is
// served by PocketBase's own files endpoint under /api/files/documents.
type documentView struct {
	ID           string  `json:"id"`
	EngagementID string  `json:"engagementId,omitempty"`
	Number       string  `json:"number"`
	Type         string  `json:"type"`
	ClientID     string  `json:"clientId,omitempty"`
	CompanyID    string  `json:"companyId,omitempty"`
	IssueDate    string  `json:"issueDate"`
	SubtotalHT   float64 `json:"subtotalHt"`
	VatAmount    float64 `json:"vatAmount"`
	TotalTTC     float64 `json:"totalTtc"`
	VatEnabled   bool    `json:"vatEnabled"`
	VatRate      float64 `json:"vatRate"`
	PDFName      string  `json:"pdfName,omitempty"`
}

func documentViewOf(record *core.Record) documentView {
	return documentView{
		ID:           record.Id,
		EngagementID: record.GetString("engagement"),
		Number:       record.GetString("number"),
		Type:         record.GetString("type"),
		ClientID:     record.GetString("client"),
		CompanyID:    record.GetString("company"),
		IssueDate:    record.GetDateTime("issue_date").Time().Format("2006-01-02"),
		SubtotalHT:   record.GetFloat("subtotal_ht"),
		VatAmount:    record.GetFloat("vat_amount"),
		TotalTTC:     record.GetFloat("total_ttc"),
		VatEnabled:   record.GetBool("vat_enabled"),
		VatRate:      record.GetFloat("vat_rate"),
		PDFName:      record.GetString("pdf"),
	}
}

func HandleDocumentList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		filter := ""
		params := map[string]any{}
		if docType := e.Request.URL.Query().Get("type"); docType != "" {
			filter = "type = {:docType}"
			params["docType"] = docType
		}
		records, err := app.FindRecordsByFilter("documents", filter, "-issue_date", 0, 0, params)
		if err != nil {
			log.Printf("document: list failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de lister les documents")
		}
		views := make([]documentView, 0, len(records))
		for _, record := range records {
			views = append(views, documentViewOf(record))
		}
		return e.JSON(http.StatusOK, views)
	}
}

func HandleDocumentGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("documents", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "document introuvable")
		}
		return e.JSON(http.StatusOK, documentViewOf(record))
	}
}

func HandleDocumentDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("documents", e.Request.PathValue("id"))
		if err != nil {
			return Error(e, http.StatusNotFound, "document introuvable")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("document: delete %s failed: %v", record.Id, err)
			return Error(e, http.StatusInternalServerError, "impossible de supprimer le document")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
