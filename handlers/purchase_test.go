package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"washngo/testhelpers"
)

func TestHandlePurchaseCreate_RecomputesTTC(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandlePurchaseCreate(app)

	// The client-sent TTC has no field at all: it is always derived.
	body := `{
		"vendor": "Fournisseur Pro",
		"date": "2025-06-10",
		"amountHt": 100,
		"vatRate": 20,
		"category": "Produits"
	}`
	req := httptest.NewRequest(http.MethodPost, "/purchases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var view struct {
		AmountTTC float64 `json:"amountTtc"`
		Status    string  `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.AmountTTC != 120 {
		t.Errorf("amount TTC = %v, want 120", view.AmountTTC)
	}
	if view.Status != "Brouillon" {
		t.Errorf("status = %q, want default Brouillon", view.Status)
	}
}

func TestHandlePurchaseCreate_MissingVendor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandlePurchaseCreate(app)

	req := httptest.NewRequest(http.MethodPost, "/purchases",
		strings.NewReader(`{"date": "2025-06-10", "amountHt": 10}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandlePurchaseUpdate_RecomputesTTC(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	purchase := testhelpers.CreateTestPurchase(t, app, "Fournisseur Pro", 100, 20, 120)
	handler := HandlePurchaseUpdate(app)

	body := `{
		"vendor": "Fournisseur Pro",
		"date": "2025-06-10",
		"amountHt": 200,
		"vatRate": 5.5,
		"category": "Produits",
		"status": "Validé"
	}`
	req := httptest.NewRequest(http.MethodPatch, "/purchases/"+purchase.Id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", purchase.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var view struct {
		AmountTTC float64 `json:"amountTtc"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.AmountTTC != 211 {
		t.Errorf("amount TTC = %v, want 211", view.AmountTTC)
	}
}
