package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"shifttrack-backend-go/internal/models"
)

// formatAmount renders cents as a decimal amount with the currency code,
// e.g. 123456 EUR -> "1234.56 EUR".
func formatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

// formatMinutes renders minutes as "H:MM".
func formatMinutes(minutes int64) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// renderInvoicePDF lays out a plain tabular invoice: sender block, client
// block, line-item table, totals.
func renderInvoicePDF(invoice *models.Invoice, user *models.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("Invoice %s", invoice.Number))
	pdf.Ln(12)

	// Sender block
	pdf.SetFont("Helvetica", "", 10)
	sender := user.BusinessName
	if sender == "" {
		sender = user.DisplayName
	}
	for _, line := range []string{sender, user.Street, user.City + " " + user.PostalCode, user.Country} {
		if line != "" && line != " " {
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
	}
	if user.TaxID != "" {
		pdf.Cell(0, 5, "Tax ID: "+user.TaxID)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Client block
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 5, "Billed to:")
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, invoice.ClientName)
	pdf.Ln(5)
	if invoice.ClientAddress != "" {
		pdf.Cell(0, 5, invoice.ClientAddress)
		pdf.Ln(5)
	}
	pdf.Ln(2)
	pdf.Cell(0, 5, fmt.Sprintf("Period: %s to %s",
		invoice.PeriodStart.Format("2006-01-02"), invoice.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Issued: "+invoice.IssuedAt.Format("2006-01-02"))
	pdf.Ln(10)

	// Item table
	colWidths := []float64{30, 70, 25, 30, 35}
	headers := []string{"Date", "Description", "Hours", "Rate", "Amount"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range invoice.Items {
		cells := []string{
			item.Date.Format("2006-01-02"),
			item.Description,
			formatMinutes(item.Minutes),
			formatAmount(item.RateCents, invoice.Currency),
			formatAmount(item.AmountCents, invoice.Currency),
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(155, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, formatAmount(invoice.SubtotalCents, invoice.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(155, 6, fmt.Sprintf("Tax (%.1f%%)", invoice.TaxRatePct), "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, formatAmount(invoice.TaxCents, invoice.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(155, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, formatAmount(invoice.TotalCents, invoice.Currency), "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// renderInvoiceCSV writes one row per line item plus a totals row.
func renderInvoiceCSV(invoice *models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"date", "description", "minutes", "rate_cents", "amount_cents", "currency"}}
	for _, item := range invoice.Items {
		rows = append(rows, []string{
			item.Date.Format("2006-01-02"),
			item.Description,
			strconv.FormatInt(item.Minutes, 10),
			strconv.FormatInt(item.RateCents, 10),
			strconv.FormatInt(item.AmountCents, 10),
			invoice.Currency,
		})
	}
	rows = append(rows, []string{"total", invoice.Number, "", "", strconv.FormatInt(invoice.TotalCents, 10), invoice.Currency})

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to render invoice CSV: %w", err)
	}
	return buf.Bytes(), nil
}
