package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"washngo/collections"
	"washngo/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("main: no .env file loaded: %v", err)
	}

	app := pocketbase.New()

	// Create collections, seed data and run migrations on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateLegacyDocumentNumbers(app); err != nil {
			log.Printf("Warning: legacy number migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Company CRUD ─────────────────────────────────────────
		se.Router.GET("/companies", handlers.HandleCompanyList(app))
		se.Router.POST("/companies", handlers.HandleCompanyCreate(app))
		se.Router.GET("/companies/{id}", handlers.HandleCompanyGet(app))
		se.Router.PATCH("/companies/{id}", handlers.HandleCompanyUpdate(app))
		se.Router.DELETE("/companies/{id}", handlers.HandleCompanyDelete(app))

		// ── Client CRUD + contacts ───────────────────────────────
		se.Router.GET("/clients", handlers.HandleClientList(app))
		se.Router.POST("/clients", handlers.HandleClientCreate(app))
		se.Router.GET("/clients/{id}", handlers.HandleClientGet(app))
		se.Router.PATCH("/clients/{id}", handlers.HandleClientUpdate(app))
		se.Router.DELETE("/clients/{id}", handlers.HandleClientDelete(app))
		se.Router.GET("/clients/{id}/revenue", handlers.HandleClientRevenue(app))
		se.Router.GET("/clients/{id}/contacts", handlers.HandleContactList(app))
		se.Router.POST("/clients/{id}/contacts", handlers.HandleContactCreate(app))
		se.Router.PATCH("/clients/{id}/contacts/{contactId}", handlers.HandleContactUpdate(app))
		se.Router.DELETE("/clients/{id}/contacts/{contactId}", handlers.HandleContactDelete(app))

		// ── Service catalog (stats before {id} so "stats" never
		//    matches as an ID) ──────────────────────────────────
		se.Router.GET("/services/stats", handlers.HandleServiceStats(app))
		se.Router.GET("/services", handlers.HandleServiceList(app))
		se.Router.POST("/services", handlers.HandleServiceCreate(app))
		se.Router.GET("/services/{id}", handlers.HandleServiceGet(app))
		se.Router.PATCH("/services/{id}", handlers.HandleServiceUpdate(app))
		se.Router.DELETE("/services/{id}", handlers.HandleServiceDelete(app))
		se.Router.POST("/services/{id}/options", handlers.HandleOptionCreate(app))
		se.Router.PATCH("/services/{id}/options/{optionId}", handlers.HandleOptionUpdate(app))
		se.Router.DELETE("/services/{id}/options/{optionId}", handlers.HandleOptionDelete(app))

		// ── Engagements ──────────────────────────────────────────
		se.Router.GET("/engagements/export", handlers.HandleEngagementExport(app))
		se.Router.GET("/engagements", handlers.HandleEngagementList(app))
		se.Router.POST("/engagements", handlers.HandleEngagementCreate(app))
		se.Router.GET("/engagements/{id}", handlers.HandleEngagementGet(app))
		se.Router.PATCH("/engagements/{id}", handlers.HandleEngagementUpdate(app))
		se.Router.DELETE("/engagements/{id}", handlers.HandleEngagementDelete(app))
		se.Router.GET("/engagements/{id}/totals", handlers.HandleEngagementTotals(app))
		se.Router.POST("/engagements/{id}/invoice", handlers.HandleGenerateInvoice(app))
		se.Router.POST("/engagements/{id}/quote", handlers.HandleGenerateQuote(app))

		// ── Purchases ────────────────────────────────────────────
		se.Router.GET("/purchases/export", handlers.HandlePurchaseExport(app))
		se.Router.GET("/purchases", handlers.HandlePurchaseList(app))
		se.Router.POST("/purchases", handlers.HandlePurchaseCreate(app))
		se.Router.GET("/purchases/{id}", handlers.HandlePurchaseGet(app))
		se.Router.PATCH("/purchases/{id}", handlers.HandlePurchaseUpdate(app))
		se.Router.DELETE("/purchases/{id}", handlers.HandlePurchaseDelete(app))

		// ── Document archive ─────────────────────────────────────
		se.Router.GET("/documents", handlers.HandleDocumentList(app))
		se.Router.GET("/documents/{id}", handlers.HandleDocumentGet(app))
		se.Router.DELETE("/documents/{id}", handlers.HandleDocumentDelete(app))

		// Redirect home to the engagement book
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/engagements")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
