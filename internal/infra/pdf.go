package infra

// pdf.go renders a bill receipt with go-pdf/fpdf: pharmacy header, bill
// number and date, customer, item table, discount and tax lines, bold total
// and payment method. The file is written to storagePath/receipt_<number>.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"pharmacare/internal/model"

	"github.com/go-pdf/fpdf"
)

const receiptNameWidth = 26

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// GenerateBillPDF writes the receipt for bill and returns its path.
// bill.Items must be loaded; bill.Pharmacy is optional.
func GenerateBillPDF(bill *model.Bill, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("receipt_%s.pdf", bill.BillNumber))

	// 80mm thermal roll; height grows with the item count.
	height := 120 + float64(len(bill.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(false, 5)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 10

	// ── Header ───────────────────────────────────────────────────────────────
	name := "PharmaCare"
	if bill.Pharmacy != nil {
		name = bill.Pharmacy.Name
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(name), "", 1, "C", false, 0, "")
	if bill.Pharmacy != nil {
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, tr(bill.Pharmacy.Address), "", 1, "C", false, 0, "")
		pdf.CellFormat(contentW, 4, tr(bill.Pharmacy.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// ── Bill info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Receipt "+bill.BillNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, bill.BillDate.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	if bill.CustomerName != nil {
		pdf.CellFormat(contentW, 4, tr("Customer: "+*bill.CustomerName), "", 1, "L", false, 0, "")
	}
	if bill.PrescriptionReference != nil {
		pdf.CellFormat(contentW, 4, tr("Prescription: "+*bill.PrescriptionReference), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.15
	col3 := contentW * 0.35

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range bill.Items {
		pdf.CellFormat(col1, 5, tr(truncate(item.ItemName, receiptNameWidth)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	line := func(label, value string) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	line("Subtotal:", bill.Subtotal.StringFixed(2))
	if !bill.DiscountAmount.IsZero() {
		line("Discount:", "-"+bill.DiscountAmount.StringFixed(2))
	}
	if !bill.TaxAmount.IsZero() {
		line("Tax:", bill.TaxAmount.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	line("TOTAL:", bill.TotalAmount.StringFixed(2))

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	line("Payment ("+string(bill.PaymentMethod)+"):", string(bill.PaymentStatus))

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
