package services_test

import (
	"errors"
	"testing"
	"time"

	"washngo/services"
	"washngo/testhelpers"
)

func TestGenerateInvoice_AssignsSequentialNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)

	first := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})
	second := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	expectedFirst := services.FormatDocumentNumber(services.InvoicePrefix, services.MonthToken(time.Now()), 1)

	result, err := services.GenerateInvoice(app, first.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate invoice failed: %v", err)
	}
	if result.DocumentNumber != expectedFirst {
		t.Errorf("first invoice number = %q, want %q", result.DocumentNumber, expectedFirst)
	}
	if len(result.PDF) == 0 {
		t.Error("expected rendered PDF bytes")
	}
	if result.Engagement.Kind != services.KindFacture {
		t.Errorf("kind = %q, want facture", result.Engagement.Kind)
	}
	if result.Engagement.Status != services.StatusRealise {
		t.Errorf("status = %q, want réalisé", result.Engagement.Status)
	}

	resultTwo, err := services.GenerateInvoice(app, second.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate second invoice failed: %v", err)
	}
	expectedSecond := services.FormatDocumentNumber(services.InvoicePrefix, services.MonthToken(time.Now()), 2)
	if resultTwo.DocumentNumber != expectedSecond {
		t.Errorf("second invoice number = %q, want %q", resultTwo.DocumentNumber, expectedSecond)
	}
}

func TestGenerateInvoice_RegenerationReusesNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	first, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate invoice failed: %v", err)
	}
	again, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("regenerate invoice failed: %v", err)
	}
	if again.DocumentNumber != first.DocumentNumber {
		t.Errorf("regeneration changed the number: %q then %q", first.DocumentNumber, again.DocumentNumber)
	}

	// The sequence must not have advanced for the next engagement.
	other := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})
	next, err := services.GenerateInvoice(app, other.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate next invoice failed: %v", err)
	}
	expected := services.FormatDocumentNumber(services.InvoicePrefix, services.MonthToken(time.Now()), 2)
	if next.DocumentNumber != expected {
		t.Errorf("next invoice number = %q, want %q", next.DocumentNumber, expected)
	}
}

func TestGenerateInvoice_PinsVatDecision(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, false, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 100, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	result, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate invoice failed: %v", err)
	}
	if result.Breakdown.VatEnabled {
		t.Error("VAT should resolve to the disabled global default")
	}
	if result.Breakdown.TotalTTC != 100 {
		t.Errorf("total TTC = %v, want 100 without VAT", result.Breakdown.TotalTTC)
	}
	if result.Engagement.InvoiceVatMode != services.VatDisabled {
		t.Errorf("invoice VAT mode = %q, want pinned to disabled", result.Engagement.InvoiceVatMode)
	}
}

func TestGenerateInvoice_NoBillableItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, nil)

	_, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if !errors.Is(err, services.ErrNoBillableItems) {
		t.Errorf("err = %v, want ErrNoBillableItems", err)
	}
}

func TestGenerateInvoice_RequiresDefaultCompany(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	_, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if !errors.Is(err, services.ErrCompanyRequired) {
		t.Errorf("err = %v, want ErrCompanyRequired", err)
	}
}

func TestGenerateQuote_PromotesAndNumbers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	result, err := services.GenerateQuote(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate quote failed: %v", err)
	}
	expected := services.FormatDocumentNumber(services.QuotePrefix, services.MonthToken(time.Now()), 1)
	if result.DocumentNumber != expected {
		t.Errorf("quote number = %q, want %q", result.DocumentNumber, expected)
	}
	if result.Engagement.Kind != services.KindDevis {
		t.Errorf("kind = %q, want devis", result.Engagement.Kind)
	}

	// A quote can still become an invoice, and the invoice sequence is
	// independent of the quote sequence.
	invoice, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("invoice after quote failed: %v", err)
	}
	expectedInvoice := services.FormatDocumentNumber(services.InvoicePrefix, services.MonthToken(time.Now()), 1)
	if invoice.DocumentNumber != expectedInvoice {
		t.Errorf("invoice number = %q, want %q", invoice.DocumentNumber, expectedInvoice)
	}

	// Once invoiced, no more quotes.
	if _, err := services.GenerateQuote(app, engagement.Id, services.ModeDownload); !errors.Is(err, services.ErrKindTransition) {
		t.Errorf("err = %v, want ErrKindTransition", err)
	}
}

func TestGenerateQuote_EmailFallbackRecordsHistory(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	contact := testhelpers.CreateTestContact(t, app, client.Id, "claire@example.fr", true)
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	result, err := services.GenerateQuote(app, engagement.Id, services.ModeEmail)
	if err != nil {
		t.Fatalf("generate quote failed: %v", err)
	}
	if result.Email == nil {
		t.Fatal("expected an email outcome")
	}
	// SMTP is not configured on a fresh instance: the composer fallback
	// applies and history is still recorded.
	if result.Email.Status != "fallback" {
		t.Errorf("email status = %q, want fallback", result.Email.Status)
	}
	if result.Email.ComposerURL == "" {
		t.Error("expected a composer URL")
	}

	record, err := app.FindRecordById("engagements", engagement.Id)
	if err != nil {
		t.Fatalf("reload engagement: %v", err)
	}
	reloaded := services.EngagementFromRecord(record)
	if len(reloaded.SendHistory) != 1 {
		t.Fatalf("send history length = %d, want 1", len(reloaded.SendHistory))
	}
	if len(reloaded.SendHistory[0].ContactIDs) != 1 || reloaded.SendHistory[0].ContactIDs[0] != contact.Id {
		t.Errorf("send history contacts = %v, want [%s]", reloaded.SendHistory[0].ContactIDs, contact.Id)
	}
	if reloaded.Status != services.StatusEnvoye || reloaded.QuoteStatus != services.StatusEnvoye {
		t.Errorf("status = %q / quote status = %q, want both envoyé", reloaded.Status, reloaded.QuoteStatus)
	}
}

func TestGenerateInvoice_ArchivesDocument(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SetGlobalVat(t, app, true, 20)
	testhelpers.CreateTestCompany(t, app, "Wash&Go Détailing", true)
	client := testhelpers.CreateTestClient(t, app, "Garage Berliet")
	service := testhelpers.CreateTestService(t, app, "Nettoyage complet")
	option := testhelpers.CreateTestOption(t, app, service.Id, "Intérieur", 50, 45)
	engagement := testhelpers.CreateTestEngagement(t, app, client.Id, service.Id, []string{option.Id})

	result, err := services.GenerateInvoice(app, engagement.Id, services.ModeDownload)
	if err != nil {
		t.Fatalf("generate invoice failed: %v", err)
	}

	docs, err := app.FindRecordsByFilter(
		"documents",
		"number = {:number}",
		"",
		0,
		0,
		map[string]any{"number": result.DocumentNumber},
	)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("archived documents = %d, want 1", len(docs))
	}
	if docs[0].GetString("type") != "Facture" {
		t.Errorf("document type = %q, want Facture", docs[0].GetString("type"))
	}
	if docs[0].GetFloat("total_ttc") != 60 {
		t.Errorf("archived total TTC = %v, want 60", docs[0].GetFloat("total_ttc"))
	}
}
