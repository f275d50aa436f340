// Package export renders a consultation's translated summary as a
// downloadable PDF. The renderer works from stored state only; it makes no
// model calls, so a download can never fail because a hosted service is
// down.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ErrNoSummary is returned when no report has been generated yet.
var ErrNoSummary = errors.New("no report summary to export")

const (
	reportTitle = "PharmaGEN Medical Report"

	footerDisclaimer = "Disclaimer: This is an AI-generated report for conceptual purposes only."
	bodyDisclaimer   = "This is an AI-generated report for conceptual purposes only. Consult a medical professional."
)

// Filename is the suggested download name for a rendered report.
const Filename = "pharma_gen_report.pdf"

// Section is one titled block of the rendered report.
type Section struct {
	Title string
	Body  string
}

// SplitSections breaks a translated summary on its "###" heading markers.
// Each chunk splits once on the first colon into title and body; a chunk
// without a colon becomes an untitled body block.
func SplitSections(summary string) []Section {
	var out []Section
	for _, chunk := range strings.Split(summary, "###") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		title, body, found := strings.Cut(chunk, ":")
		if !found || strings.TrimSpace(title) == "" {
			out = append(out, Section{Body: chunk})
			continue
		}
		out = append(out, Section{
			Title: strings.TrimSpace(title),
			Body:  strings.TrimSpace(body),
		})
	}
	return out
}

// Render produces the PDF for a translated summary. The built-in fonts use
// a single-byte code page, so characters outside it degrade to a
// replacement glyph via the library's translator; that is the accepted
// trade-off of this output format.
func Render(translatedSummary, languageName string) ([]byte, error) {
	if strings.TrimSpace(translatedSummary) == "" {
		return nil, ErrNoSummary
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle, true)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, tr(reportTitle), "", 1, "C", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 5, tr(footerDisclaimer), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(reportTitle), "", 1, "C", false, 0, "")
	if languageName != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 10, tr("Report in "+languageName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	for _, sec := range SplitSections(translatedSummary) {
		if sec.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 10, tr(sec.Title+":"), "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(sec.Body), "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Disclaimer:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.MultiCell(0, 5, tr(bodyDisclaimer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
