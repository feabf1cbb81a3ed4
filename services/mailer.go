package services

import (
	"bytes"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/tools/mailer"
)

// SendFailureReason classifies a failed document email. Callers branch on
// it: not-configured is recoverable through the composer fallback, the other
// two must surface to the user and must not mark the document as sent.
type SendFailureReason string

const (
	ReasonNotConfigured SendFailureReason = "not-configured"
	ReasonRequestError  SendFailureReason = "request-error"
	ReasonServerError   SendFailureReason = "server-error"
)

// SendResult is the three-way outcome of a document send.
type SendResult struct {
	OK      bool              `json:"ok"`
	Reason  SendFailureReason `json:"reason,omitempty"`
	Message string            `json:"message,omitempty"`
}

// EmailAttachment is a rendered document attached to an outgoing email.
type EmailAttachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// SendDocumentEmail dispatches a document email through the application's
// SMTP client. When SMTP is not configured the caller is expected to fall
// back to a client-side composer URL.
func SendDocumentEmail(app *pocketbase.PocketBase, to []string, subject, body string, attachment *EmailAttachment) SendResult {
	if !app.Settings().SMTP.Enabled {
		return SendResult{OK: false, Reason: ReasonNotConfigured, Message: "SMTP service not configured."}
	}

	recipients := make([]mail.Address, 0, len(to))
	for _, address := range to {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		recipients = append(recipients, mail.Address{Address: address})
	}
	if len(recipients) == 0 {
		return SendResult{OK: false, Reason: ReasonRequestError, Message: "No recipient email addresses."}
	}

	message := &mailer.Message{
		From: mail.Address{
			Name:    app.Settings().Meta.SenderName,
			Address: app.Settings().Meta.SenderAddress,
		},
		To:      recipients,
		Subject: subject,
		Text:    body,
	}
	if attachment != nil {
		message.Attachments = map[string]io.Reader{
			attachment.Filename: bytes.NewReader(attachment.Content),
		}
	}

	if err := app.NewMailClient().Send(message); err != nil {
		return SendResult{OK: false, Reason: ReasonServerError, Message: err.Error()}
	}
	return SendResult{OK: true}
}

// BuildComposerURL builds a Gmail compose link used as the client-side
// fallback when SMTP is not configured. The attachment cannot ride along;
// the caller downloads the PDF separately.
func BuildComposerURL(to []string, subject, body string) string {
	return fmt.Sprintf(
		"https://mail.google.com/mail/?view=cm&fs=1&to=%s&su=%s&body=%s",
		url.QueryEscape(strings.Join(to, ",")),
		url.QueryEscape(subject),
		url.QueryEscape(body),
	)
}
