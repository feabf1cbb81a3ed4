package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func HandleEngagementExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		export, err := services.BuildEngagementExport(app)
		if err != nil {
			log.Printf("export: engagement build failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de générer l'export")
		}
		return serveExcel(e, export, services.ExportFilename("prestations", time.Now()))
	}
}

func HandlePurchaseExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		export, err := services.BuildPurchaseExport(app)
		if err != nil {
			log.Printf("export: purchase build failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de générer l'export")
		}
		return serveExcel(e, export, services.ExportFilename("achats", time.Now()))
	}
}

func serveExcel(e *core.RequestEvent, export *services.TabularExport, filename string) error {
	content, err := services.GenerateExcel(export)
	if err != nil {
		log.Printf("export: workbook render failed: %v", err)
		return Error(e, http.StatusInternalServerError, "impossible de générer l'export")
	}
	e.Response.Header().Set("Content-Type", xlsxContentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err = e.Response.Write(content)
	return err
}
