package services_test

import (
	"strings"
	"testing"

	"washngo/services"
	"washngo/testhelpers"
)

func TestSendDocumentEmail_NotConfigured(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// A fresh instance has no SMTP configuration.
	result := services.SendDocumentEmail(app, []string{"claire@example.fr"}, "Facture", "Bonjour", nil)
	if result.OK {
		t.Fatal("send should fail without SMTP configuration")
	}
	if result.Reason != services.ReasonNotConfigured {
		t.Errorf("reason = %q, want %q", result.Reason, services.ReasonNotConfigured)
	}
}

func TestBuildComposerURL(t *testing.T) {
	url := services.BuildComposerURL([]string{"a@example.fr", "b@example.fr"}, "Devis DEV-202506-0001", "Bonjour,\nci-joint le devis.")

	if !strings.HasPrefix(url, "https://mail.google.com/mail/?view=cm&fs=1&to=") {
		t.Errorf("unexpected composer URL prefix: %q", url)
	}
	if !strings.Contains(url, "a%40example.fr%2Cb%40example.fr") {
		t.Errorf("recipients not escaped into URL: %q", url)
	}
	if !strings.Contains(url, "su=Devis+DEV-202506-0001") {
		t.Errorf("subject missing from URL: %q", url)
	}
}
