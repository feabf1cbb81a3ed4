package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/xuri/excelize/v2"
)

// ExportColumn defines one column of a tabular export.
type ExportColumn struct {
	Header string
	Width  float64
}

// TabularExport is a sheet of string cells ready for excelize.
type TabularExport struct {
	SheetName string
	Columns   []ExportColumn
	Rows      [][]string
}

// BuildEngagementExport assembles the engagement book: one row per
// engagement with its resolved client, document number and recomputed
// totals.
func BuildEngagementExport(app *pocketbase.PocketBase) (*TabularExport, error) {
	records, err := app.FindRecordsByFilter("engagements", "", "-scheduled_at", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}

	export := &TabularExport{
		SheetName: "Prestations",
		Columns: []ExportColumn{
			{Header: "Numéro", Width: 18},
			{Header: "Type", Width: 10},
			{Header: "Statut", Width: 12},
			{Header: "Client", Width: 30},
			{Header: "Date", Width: 12},
			{Header: "Support", Width: 20},
			{Header: "Durée", Width: 10},
			{Header: "Total HT", Width: 14},
			{Header: "Majoration TTC", Width: 14},
		},
	}

	clientNames := map[string]string{}
	for _, record := range records {
		e := EngagementFromRecord(record)
		totals := EngagementTotals(app, e)

		clientName, ok := clientNames[e.ClientID]
		if !ok {
			if client, err := app.FindRecordById("clients", e.ClientID); err == nil {
				clientName = client.GetString("name")
			}
			clientNames[e.ClientID] = clientName
		}

		export.Rows = append(export.Rows, []string{
			DocumentNumberFor(e),
			string(e.Kind),
			string(e.Status),
			clientName,
			e.ScheduledAt.Format("02/01/2006"),
			supportLabel(e),
			FormatDuration(totals.Duration),
			FormatEUR(RoundCurrency(totals.Price)),
			FormatEUR(RoundCurrency(totals.Surcharge)),
		})
	}
	return export, nil
}

// BuildPurchaseExport assembles the purchase ledger.
func BuildPurchaseExport(app *pocketbase.PocketBase) (*TabularExport, error) {
	records, err := app.FindRecordsByFilter("purchases", "", "-date", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	export := &TabularExport{
		SheetName: "Achats",
		Columns: []ExportColumn{
			{Header: "Référence", Width: 16},
			{Header: "Fournisseur", Width: 26},
			{Header: "Catégorie", Width: 16},
			{Header: "Statut", Width: 12},
			{Header: "Date", Width: 12},
			{Header: "Montant HT", Width: 14},
			{Header: "TVA (%)", Width: 10},
			{Header: "Montant TTC", Width: 14},
		},
	}

	for _, record := range records {
		export.Rows = append(export.Rows, []string{
			record.GetString("reference"),
			record.GetString("vendor"),
			record.GetString("category"),
			record.GetString("status"),
			record.GetDateTime("date").Time().Format("02/01/2006"),
			FormatEUR(record.GetFloat("amount_ht")),
			FormatVatRateLabel(record.GetFloat("vat_rate")),
			FormatEUR(record.GetFloat("amount_ttc")),
		})
	}
	return export, nil
}

// GenerateExcel renders a tabular export into an xlsx file.
func GenerateExcel(data *TabularExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := data.SheetName
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	for i, column := range data.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheetName, name, name, column.Width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#0049AC"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, column := range data.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i+1, err)
		}
		if err := f.SetCellValue(sheetName, cell, column.Header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
	}

	for rowIndex, rowValues := range data.Rows {
		for colIndex, value := range rowValues {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", colIndex+1, rowIndex+2, err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buffer bytes.Buffer
	if err := f.Write(&buffer); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

// ExportFilename builds a dated download name like "prestations-20240513.xlsx".
func ExportFilename(base string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", base, at.Format("20060102"))
}
