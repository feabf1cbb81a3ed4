package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"washngo/testhelpers"
)

func TestHandleEngagementCreate_Valid(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	handler := HandleEngagementCreate(app)

	body := `{
		"clientId": "` + client.Id + `",
		"serviceId": "` + service.Id + `",
		"scheduledAt": "2025-06-15T09:00:00Z",
		"optionIds": ["` + option.Id + `"],
		"supportType": "Voiture",
		"supportDetail": "Break familial"
	}`
	req := httptest.NewRequest(http.MethodPost, "/engagements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var view struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Totals struct {
			Price float64 `json:"price"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Kind != "service" {
		t.Errorf("kind = %q, want service", view.Kind)
	}
	if view.Totals.Price != 50 {
		t.Errorf("price = %v, want 50", view.Totals.Price)
	}
}

func TestHandleEngagementCreate_MissingClient(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleEngagementCreate(app)

	req := httptest.NewRequest(http.MethodPost, "/engagements",
		strings.NewReader(`{"serviceId": "abc", "scheduledAt": "2025-06-15T09:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "clientId") {
		t.Errorf("expected a clientId field error, got %s", rec.Body.String())
	}
}

func TestHandleEngagementUpdate_ForbiddenKindTransition(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, nil)
	engagement.Set("kind", "facture")
	if err := app.Save(engagement); err != nil {
		t.Fatalf("promote engagement: %v", err)
	}
	handler := HandleEngagementUpdate(app)

	req := httptest.NewRequest(http.MethodPatch, "/engagements/"+engagement.Id,
		strings.NewReader(`{"kind": "devis"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", engagement.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleEngagementUpdate_SanitizesOverrides(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})
	handler := HandleEngagementUpdate(app)

	// An override for an option that is not selected must be dropped.
	body := `{
		"optionIds": ["` + option.Id + `"],
		"optionOverrides": {
			"` + option.Id + `": {"quantity": 2},
			"ghost": {"quantity": 9}
		}
	}`
	req := httptest.NewRequest(http.MethodPatch, "/engagements/"+engagement.Id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", engagement.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var view struct {
		OptionOverrides map[string]struct {
			Quantity *int `json:"quantity"`
		} `json:"optionOverrides"`
		Totals struct {
			Price float64 `json:"price"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := view.OptionOverrides["ghost"]; ok {
		t.Error("override for unselected option survived")
	}
	if view.Totals.Price != 100 {
		t.Errorf("price = %v, want 100 with quantity 2", view.Totals.Price)
	}
}

func TestHandleEngagementGet_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleEngagementGet(app)

	req := httptest.NewRequest(http.MethodGet, "/engagements/missing123", nil)
	req.SetPathValue("id", "missing123")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleEngagementTotals(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 100, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})
	handler := HandleEngagementTotals(app)

	req := httptest.NewRequest(http.MethodGet, "/engagements/"+engagement.Id+"/totals", nil)
	req.SetPathValue("id", engagement.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload struct {
		Breakdown struct {
			VatAmount float64 `json:"vatAmount"`
			TotalTTC  float64 `json:"totalTtc"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Breakdown.VatAmount != 20 || payload.Breakdown.TotalTTC != 120 {
		t.Errorf("breakdown = %+v, want VAT 20 and TTC 120", payload.Breakdown)
	}
}
