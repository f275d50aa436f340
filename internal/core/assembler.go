package core

import (
	"fmt"
	"strings"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

// assembler.go slices the generated diagnosis response into its four
// tagged sections and renders the two report summaries.

// reportHeaders are the exact headings the diagnosis prompt demands, in
// the order they must appear.
var reportHeaders = [4]string{
	"Diagnosis:",
	"Proposed New Drug:",
	"Hypothetical Dosage/Instructions:",
	"Allergy/Safety Note:",
}

// notFound is stored for a section whose heading never appeared.
const notFound = "Not found"

// asciiLower folds A-Z only. Unlike strings.ToLower it never changes the
// byte length, so offsets found in the folded string are valid in the
// original even when the model reply carries multibyte runes.
func asciiLower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// ExtractReport pulls the four sections out of a model response. Matching
// is case-insensitive and first-match-wins; a section's content runs from
// its heading to the next recognized heading or the end of the text, so
// values may span newlines. A missing heading yields "Not found" for that
// section only.
func ExtractReport(text string) pkg.Report {
	lower := asciiLower(text)
	var fields [4]string
	for i, h := range reportHeaders {
		start := strings.Index(lower, asciiLower(h))
		if start < 0 {
			fields[i] = notFound
			continue
		}
		start += len(h)
		end := len(text)
		for _, later := range reportHeaders[i+1:] {
			if j := strings.Index(lower[start:], asciiLower(later)); j >= 0 && start+j < end {
				end = start + j
			}
		}
		fields[i] = strings.TrimSpace(text[start:end])
	}
	return pkg.Report{
		Diagnosis:   fields[0],
		DrugConcept: fields[1],
		Dosage:      fields[2],
		SafetyNote:  fields[3],
	}
}

// summaryLabels are the summary section titles in render order. The first
// two sections carry the user's own words; the rest carry the simplified
// report fields.
var summaryLabels = [6]string{"Symptoms", "Allergies", "Diagnosis", "Medicine", "Dosage", "Safety Notes"}

// buildEnglishSummary renders the bold-label English summary.
func buildEnglishSummary(values [6]string) string {
	var b strings.Builder
	for i, label := range summaryLabels {
		fmt.Fprintf(&b, "**%s:** %s\n\n", label, values[i])
	}
	return b.String()
}

// buildTranslatedSummary renders the heading-marked summary the export
// renderer later splits on "###".
func buildTranslatedSummary(titles, values [6]string) string {
	var b strings.Builder
	for i := range titles {
		fmt.Fprintf(&b, "### %s:\n%s\n\n", titles[i], values[i])
	}
	return b.String()
}
