package services

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// DocumentLine is one priced row of an invoice or quote table.
type DocumentLine struct {
	Label     string
	Detail    string
	Quantity  int
	UnitPrice float64
	Total     float64
}

// DocumentData is everything the renderer needs to produce an invoice or a
// quote. The caller computes all monetary values; the renderer only lays
// them out.
type DocumentData struct {
	Title         string // "FACTURE" or "DEVIS"
	Number        string
	IssueDate     time.Time
	ServiceDate   time.Time
	Company       *Company
	Client        *Client
	ServiceName   string
	SupportLabel  string
	Lines         []DocumentLine
	Surcharge     float64
	SubtotalHT    float64
	VatEnabled    bool
	VatRateLabel  string
	VatAmount     float64
	TotalTTC      float64
	PaymentMethod string // invoices only
	ValidityNote  string // quotes only
	LegalNotes    string
}

// GenerateDocumentPDF renders an invoice or quote PDF using maroto/v2 and
// returns the raw bytes.
func GenerateDocumentPDF(data DocumentData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()

	m := maroto.New(cfg)

	addDocumentHeader(m, data)
	addParties(m, data)
	addLinesTableHeader(m)
	for _, line := range data.Lines {
		addLineRow(m, line)
	}
	addDocumentSummary(m, data)
	addDocumentFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addDocumentHeader(m core.Maroto, data DocumentData) {
	m.AddRows(
		row.New(14).Add(
			col.New(7).Add(
				text.New(data.Company.Name, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
			col.New(5).Add(
				text.New(fmt.Sprintf("%s %s", data.Title, data.Number), props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: &props.Color{Red: 0, Green: 73, Blue: 172},
				}),
			),
		),
	)

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Date d'émission : %s", data.IssueDate.Format("02/01/2006")), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date de prestation : %s", data.ServiceDate.Format("02/01/2006")), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
		row.New(4),
	)
}

func addParties(m core.Maroto, data DocumentData) {
	company := data.Company
	client := data.Client

	companyLines := []string{
		company.Address,
		fmt.Sprintf("%s %s", company.PostalCode, company.City),
		fmt.Sprintf("SIRET : %s", company.Siret),
	}
	if company.VatNumber != "" {
		companyLines = append(companyLines, fmt.Sprintf("TVA : %s", company.VatNumber))
	}
	if company.Email != "" {
		companyLines = append(companyLines, company.Email)
	}

	clientLines := []string{client.Name}
	if client.Address != "" {
		clientLines = append(clientLines, client.Address)
	}
	if client.City != "" {
		clientLines = append(clientLines, client.City)
	}
	if client.Email != "" {
		clientLines = append(clientLines, client.Email)
	}

	m.AddRows(row.New(5).Add(
		col.New(6).Add(text.New("Émetteur", props.Text{Size: 9, Style: fontstyle.Bold})),
		col.New(6).Add(text.New("Client", props.Text{Size: 9, Style: fontstyle.Bold})),
	))

	maxLines := len(companyLines)
	if len(clientLines) > maxLines {
		maxLines = len(clientLines)
	}
	for i := 0; i < maxLines; i++ {
		left, right := "", ""
		if i < len(companyLines) {
			left = companyLines[i]
		}
		if i < len(clientLines) {
			right = clientLines[i]
		}
		m.AddRows(row.New(4).Add(
			col.New(6).Add(text.New(left, props.Text{Size: 8})),
			col.New(6).Add(text.New(right, props.Text{Size: 8})),
		))
	}

	if data.SupportLabel != "" {
		m.AddRows(
			row.New(3),
			row.New(5).Add(col.New(12).Add(
				text.New(fmt.Sprintf("%s — %s", data.ServiceName, data.SupportLabel), props.Text{
					Size:  9,
					Style: fontstyle.Italic,
				}),
			)),
		)
	}
	m.AddRows(row.New(4))
}

func addLinesTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 0, Green: 73, Blue: 172}}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(text.New("Prestation", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Qté", mergeAlign(headerText, align.Center))).WithStyle(&headerCell),
			col.New(2).Add(text.New("PU HT", mergeAlign(headerText, align.Right))).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total HT", mergeAlign(headerText, align.Right))).WithStyle(&headerCell),
		),
	)
}

func addLineRow(m core.Maroto, line DocumentLine) {
	label := line.Label
	if line.Detail != "" {
		label = fmt.Sprintf("%s — %s", line.Label, line.Detail)
	}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New(label, props.Text{Size: 9})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", line.Quantity), props.Text{Size: 9, Align: align.Center})),
			col.New(2).Add(text.New(FormatEUR(line.UnitPrice), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(FormatEUR(line.Total), props.Text{Size: 9, Align: align.Right})),
		),
	)
}

func addDocumentSummary(m core.Maroto, data DocumentData) {
	m.AddRows(row.New(4))

	addSummaryLine(m, "Sous-total HT", FormatEUR(RoundCurrency(data.SubtotalHT)), false)
	if data.VatEnabled {
		addSummaryLine(m, fmt.Sprintf("TVA (%s %%)", data.VatRateLabel), FormatEUR(data.VatAmount), false)
	} else {
		addSummaryLine(m, "TVA non applicable, art. 293 B du CGI", "", false)
	}
	if data.Surcharge > 0 {
		addSummaryLine(m, "Majoration (TTC)", FormatEUR(RoundCurrency(data.Surcharge)), false)
	}
	addSummaryLine(m, "Total TTC", FormatEUR(RoundCurrency(data.TotalTTC)), true)
}

func addSummaryLine(m core.Maroto, label, value string, bold bool) {
	style := fontstyle.Normal
	size := 9.0
	if bold {
		style = fontstyle.Bold
		size = 11
	}
	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New(label, props.Text{Size: size, Style: style, Align: align.Right})),
			col.New(4).Add(text.New(value, props.Text{Size: size, Style: style, Align: align.Right})),
		),
	)
}

func addDocumentFooter(m core.Maroto, data DocumentData) {
	m.AddRows(row.New(6))

	if data.PaymentMethod != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Règlement : %s", data.PaymentMethod), props.Text{Size: 8}),
		)))
	}
	if data.ValidityNote != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Validité du devis : %s", data.ValidityNote), props.Text{Size: 8}),
		)))
	}
	if data.Company.IBAN != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("IBAN : %s  BIC : %s", data.Company.IBAN, data.Company.BIC), props.Text{Size: 8}),
		)))
	}
	if data.LegalNotes != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New(data.LegalNotes, props.Text{
				Size:  7,
				Color: &props.Color{Red: 120, Green: 120, Blue: 120},
			}),
		)))
	}
}

func mergeAlign(base props.Text, a align.Type) props.Text {
	base.Align = a
	return base
}
