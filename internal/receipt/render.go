// Package receipt renders donation receipts to PDF and keeps the rendered
// documents in blob storage.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/weforyou/ledger/internal/domain"
)

var (
	indiaTime = time.FixedZone("IST", 5*60*60+30*60)
	enIN      = message.NewPrinter(language.MustParse("en-IN"))
)

// Issuer is the organisation block printed on every receipt.
type Issuer struct {
	Settings  domain.SiteSettings
	Signatory string
	Footer    string
}

// FormatAmount prints an amount with Indian digit grouping, e.g. "Rs. 1,00,000.00".
func FormatAmount(m domain.Money) string {
	return enIN.Sprintf("Rs. %v", number.Decimal(m.Decimal().InexactFloat64(), number.Scale(2)))
}

// Render draws a single-page A4 receipt.
func Render(r domain.Receipt, issuer Issuer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Donation Receipt "+r.Number, true)
	pdf.SetAuthor(issuer.Settings.OrgName, true)
	pdf.SetCreationDate(r.IssuedAt)
	pdf.SetModificationDate(r.IssuedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	org := issuer.Settings
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(org.OrgName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{org.Address, contactLine(org), registrationLine(org)} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Donation Receipt", "B", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(85, 6, "Receipt No: "+r.Number, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+r.IssuedAt.In(indiaTime).Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(240, 246, 240)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, FormatAmount(r.Amount), "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, AmountInWords(r.Amount), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, "Donor Information")
	row(pdf, tr, "Name", r.DonorName)
	row(pdf, tr, "PAN", r.PAN)
	if r.Address != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, "Address", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(r.Address), "", "L", false)
	}
	pdf.Ln(3)

	section(pdf, "Donation Details")
	campaign := r.CampaignTitle
	if campaign == "" {
		campaign = "General Donation"
	}
	row(pdf, tr, "Campaign", campaign)
	row(pdf, tr, "Transaction ID", r.PaymentRef)
	row(pdf, tr, "Currency", r.Currency)
	row(pdf, tr, "Financial Year", r.FinancialYear)
	pdf.Ln(4)

	if r.Section80G {
		pdf.SetFont("Helvetica", "", 9)
		note := "This donation is eligible for tax deduction under Section 80G of the Income Tax Act, 1961."
		if org.Registration80G != "" {
			note += " 80G Registration: " + org.Registration80G + "."
		}
		pdf.MultiCell(0, 5, tr(note), "1", "L", false)
		pdf.Ln(6)
	}

	if issuer.Signatory != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr("For "+org.OrgName), "", 1, "R", false, 0, "")
		pdf.Ln(10)
		pdf.CellFormat(0, 6, tr(issuer.Signatory), "", 1, "R", false, 0, "")
	}

	footer := issuer.Footer
	if footer == "" {
		footer = "This is a computer-generated receipt and does not require a signature."
	}
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 4, tr(footer), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt %s: render pdf: %w", r.Number, err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func row(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func contactLine(s domain.SiteSettings) string {
	switch {
	case s.Phone != "" && s.Email != "":
		return s.Phone + " | " + s.Email
	case s.Phone != "":
		return s.Phone
	}
	return s.Email
}

func registrationLine(s domain.SiteSettings) string {
	switch {
	case s.PAN != "" && s.RegistrationNumber != "":
		return "PAN: " + s.PAN + " | Reg. No: " + s.RegistrationNumber
	case s.PAN != "":
		return "PAN: " + s.PAN
	case s.RegistrationNumber != "":
		return "Reg. No: " + s.RegistrationNumber
	}
	return ""
}
