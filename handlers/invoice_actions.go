package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

// HandleGenerateInvoice renders the invoice for an engagement. With
// ?mode=email the PDF is dispatched to the resolved contacts and the JSON
// outcome is returned; otherwise the PDF bytes are streamed back.
func HandleGenerateInvoice(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode := documentMode(e)

		result, err := services.GenerateInvoice(app, e.Request.PathValue("id"), mode)
		if err != nil {
			log.Printf("invoice_actions: generate invoice failed: %v", err)
			return BusinessError(e, err)
		}
		return respondDocument(e, mode, result)
	}
}

// HandleGenerateQuote renders the quote for an engagement, with the same
// mode handling as invoices.
func HandleGenerateQuote(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode := documentMode(e)

		result, err := services.GenerateQuote(app, e.Request.PathValue("id"), mode)
		if err != nil {
			log.Printf("invoice_actions: generate quote failed: %v", err)
			return BusinessError(e, err)
		}
		return respondDocument(e, mode, result)
	}
}

func documentMode(e *core.RequestEvent) services.DocumentMode {
	switch e.Request.URL.Query().Get("mode") {
	case "email":
		return services.ModeEmail
	case "print":
		return services.ModePrint
	default:
		return services.ModeDownload
	}
}

func respondDocument(e *core.RequestEvent, mode services.DocumentMode, result *services.GenerateResult) error {
	if mode == services.ModeEmail {
		status := http.StatusOK
		if result.Email != nil && result.Email.Status == "error" {
			// The document exists and its number is assigned, but it was
			// not sent; the caller must surface this.
			status = http.StatusBadGateway
		}
		return e.JSON(status, result)
	}

	disposition := "attachment"
	if mode == services.ModePrint {
		disposition = "inline"
	}
	e.Response.Header().Set("Content-Type", "application/pdf")
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, result.Filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(result.PDF)
	return err
}
