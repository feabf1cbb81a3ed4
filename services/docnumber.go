package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Document number prefixes. Invoices and quotes carry canonical sequential
// numbers; plain service records only ever get the legacy display form.
const (
	InvoicePrefix = "FAC"
	QuotePrefix   = "DEV"
	ServicePrefix = "SRV"
)

// canonical form: PREFIX-YYYYMM-NNNN
var docNumberPattern = regexp.MustCompile(`^([A-Z]{3})-(\d{6})-(\d{4})$`)

// MonthToken returns the YYYYMM token that scopes a document sequence.
func MonthToken(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}

// FormatDocumentNumber builds the canonical number string.
func FormatDocumentNumber(prefix, monthToken string, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, monthToken, sequence)
}

// NextDocumentNumber computes the next sequential number for the month of
// referenceDate by scanning the already-assigned numbers of the same kind.
// Only canonical numbers matching the current month count: a gap in the
// sequence is never back-filled (max+1, not min-gap-fill), other months
// never influence the result, and manually edited or legacy numbers are
// ignored entirely.
//
// Callers must invoke this only when the engagement has no stored number of
// that kind yet; once assigned, the stored number is reused verbatim.
func NextDocumentNumber(existing []string, prefix string, referenceDate time.Time) string {
	monthToken := MonthToken(referenceDate)

	highest := 0
	for _, number := range existing {
		match := docNumberPattern.FindStringSubmatch(strings.TrimSpace(number))
		if match == nil || match[1] != prefix || match[2] != monthToken {
			continue
		}
		sequence, err := strconv.Atoi(match[3])
		if err != nil {
			continue
		}
		if sequence > highest {
			highest = sequence
		}
	}

	return FormatDocumentNumber(prefix, monthToken, highest+1)
}

// IsCanonicalNumber reports whether a stored number participates in the
// sequence scan for the given prefix.
func IsCanonicalNumber(number, prefix string) bool {
	match := docNumberPattern.FindStringSubmatch(strings.TrimSpace(number))
	return match != nil && match[1] == prefix
}

var nonDigits = regexp.MustCompile(`\D`)

// LegacyDocumentNumber derives a display-only number from an opaque record
// id for engagements created before sequential numbering existed. It is
// never written back as the canonical number and never feeds the sequence
// scan (its digits are unrelated to any month's sequence).
func LegacyDocumentNumber(id, prefix string) string {
	digits := nonDigits.ReplaceAllString(id, "")
	numeric, err := strconv.ParseInt(digits, 10, 64)
	if digits == "" || err != nil {
		return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(id))
	}
	return fmt.Sprintf("%s-%04d", prefix, numeric)
}

// DocumentNumberFor returns the number shown for an engagement: the stored
// canonical number when one was assigned, otherwise the legacy fallback.
func DocumentNumberFor(e *Engagement) string {
	switch e.Kind {
	case KindFacture:
		if e.InvoiceNumber != "" {
			return e.InvoiceNumber
		}
		return LegacyDocumentNumber(e.ID, InvoicePrefix)
	case KindDevis:
		if e.QuoteNumber != "" {
			return e.QuoteNumber
		}
		return LegacyDocumentNumber(e.ID, QuotePrefix)
	default:
		return LegacyDocumentNumber(e.ID, ServicePrefix)
	}
}
