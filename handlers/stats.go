package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

// HandleServiceStats reports per-category catalog figures and revenue.
func HandleServiceStats(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		summaries, err := services.ServiceCategorySummaries(app)
		if err != nil {
			log.Printf("stats: category summaries failed: %v", err)
			return Error(e, http.StatusInternalServerError, "impossible de calculer les statistiques")
		}
		return e.JSON(http.StatusOK, summaries)
	}
}
