package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const wellFormedReport = `Diagnosis: Acute viral pharyngitis, consistent with the
reported fever and sore throat.
Proposed New Drug: Pharyngol-Z
Hypothetical Dosage/Instructions: One 20 mg tablet
twice daily for five days.
Allergy/Safety Note: Contains no penicillin derivatives.`

func TestExtractReportWellFormed(t *testing.T) {
	r := ExtractReport(wellFormedReport)

	assert.Equal(t, "Acute viral pharyngitis, consistent with the\nreported fever and sore throat.", r.Diagnosis)
	assert.Equal(t, "Pharyngol-Z", r.DrugConcept)
	assert.Equal(t, "One 20 mg tablet\ntwice daily for five days.", r.Dosage)
	assert.Equal(t, "Contains no penicillin derivatives.", r.SafetyNote)

	// No heading text leaks into the preceding section.
	assert.NotContains(t, r.Diagnosis, "Proposed New Drug")
	assert.NotContains(t, r.Dosage, "Allergy/Safety Note")
}

func TestExtractReportCaseInsensitiveHeadings(t *testing.T) {
	r := ExtractReport("diagnosis: flu\nPROPOSED NEW DRUG: FluFix\nhypothetical dosage/instructions: 1 daily\nallergy/safety note: none")
	assert.Equal(t, "flu", r.Diagnosis)
	assert.Equal(t, "FluFix", r.DrugConcept)
	assert.Equal(t, "1 daily", r.Dosage)
	assert.Equal(t, "none", r.SafetyNote)
}

func TestExtractReportMissingOneHeading(t *testing.T) {
	r := ExtractReport(`Diagnosis: common cold
Hypothetical Dosage/Instructions: rest and fluids
Allergy/Safety Note: no known interactions`)

	assert.Equal(t, "common cold", r.Diagnosis)
	assert.Equal(t, "Not found", r.DrugConcept)
	assert.Equal(t, "rest and fluids", r.Dosage)
	assert.Equal(t, "no known interactions", r.SafetyNote)
}

func TestExtractReportOnlyLastHeading(t *testing.T) {
	r := ExtractReport("Allergy/Safety Note: avoid aspirin")
	assert.Equal(t, "Not found", r.Diagnosis)
	assert.Equal(t, "Not found", r.DrugConcept)
	assert.Equal(t, "Not found", r.Dosage)
	assert.Equal(t, "avoid aspirin", r.SafetyNote)
}

func TestExtractReportNoHeadings(t *testing.T) {
	r := ExtractReport("Error: Rate limit exceeded. Try again later.")
	assert.Equal(t, "Not found", r.Diagnosis)
	assert.Equal(t, "Not found", r.DrugConcept)
	assert.Equal(t, "Not found", r.Dosage)
	assert.Equal(t, "Not found", r.SafetyNote)
}

func TestExtractReportFirstMatchWins(t *testing.T) {
	r := ExtractReport("Diagnosis: first\nDiagnosis: second\nProposed New Drug: X\nHypothetical Dosage/Instructions: Y\nAllergy/Safety Note: Z")
	assert.Equal(t, "first\nDiagnosis: second", r.Diagnosis)
}

func TestExtractReportMultibyteRunesBeforeHeadings(t *testing.T) {
	// U+212A KELVIN SIGN case-folds to a shorter byte sequence; heading
	// offsets after it must not drift.
	r := ExtractReport("Fever of 310K noted.\nDiagnosis: influenza\nProposed New Drug: Fictivir")
	assert.Equal(t, "influenza", r.Diagnosis)
	assert.Equal(t, "Fictivir", r.DrugConcept)

	// U+023A folds to a longer sequence and used to push offsets past the
	// end of the text.
	r = ExtractReport("Ⱥ noted during intake.\nAllergy/Safety Note: avoid sunlight")
	assert.Equal(t, "avoid sunlight", r.SafetyNote)
	assert.Equal(t, "Not found", r.Diagnosis)
}

func TestAsciiLowerKeepsByteLength(t *testing.T) {
	assert.Equal(t, "diagnosis: 310K", asciiLower("Diagnosis: 310K"))
	assert.Equal(t, len("Ⱥ ABC"), len(asciiLower("Ⱥ ABC")))
}

func TestBuildEnglishSummary(t *testing.T) {
	got := buildEnglishSummary([6]string{"fever", "none", "- flu", "- FluFix", "- 1 daily", "- safe"})
	assert.Contains(t, got, "**Symptoms:** fever\n\n")
	assert.Contains(t, got, "**Allergies:** none\n\n")
	assert.Contains(t, got, "**Diagnosis:** - flu\n\n")
	assert.Contains(t, got, "**Medicine:** - FluFix\n\n")
	assert.Contains(t, got, "**Dosage:** - 1 daily\n\n")
	assert.Contains(t, got, "**Safety Notes:** - safe\n\n")
}

func TestBuildTranslatedSummaryUsesHeadingMarkers(t *testing.T) {
	titles := [6]string{"Síntomas", "Alergias", "Diagnóstico", "Medicina", "Dosis", "Notas"}
	values := [6]string{"fiebre", "ninguna", "gripe", "FluFix", "1 al día", "seguro"}
	got := buildTranslatedSummary(titles, values)

	assert.Contains(t, got, "### Síntomas:\nfiebre\n\n")
	assert.Contains(t, got, "### Notas:\nseguro\n\n")
	assert.Equal(t, 6, strings.Count(got, "### "))
}
