package llm

import (
	"context"
	"strings"
)

// MockClient produces deterministic offline responses so the whole consult
// flow can be exercised without a hosted model. Selected with
// LLM_PROVIDER=mock; also handy in development.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

const mockReport = `Diagnosis: Mock seasonal pharyngitis, consistent with the reported symptoms.
Proposed New Drug: PharyngoEase-XR (fictional concept).
Hypothetical Dosage/Instructions: One 50 mg tablet twice daily after food, for five days.
Allergy/Safety Note: Formulated without the reported allergens; discontinue if a rash develops. Entirely fictional.`

// Complete inspects the prompt shape and answers in kind: translation
// prompts echo the embedded text, the diagnosis prompt returns a canned
// report with all four headings, simplify prompts return a bullet.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	p := req.Prompt
	switch {
	case strings.HasPrefix(p, "Translate the following text"):
		if _, tail, ok := strings.Cut(p, "Text to translate: "); ok {
			return tail, nil
		}
		return p, nil
	case strings.Contains(p, "Format your response with these exact headings"):
		return mockReport, nil
	case strings.HasPrefix(p, "Simplify this"):
		if i := strings.Index(p, "bullet points"); i >= 0 {
			if _, tail, ok := strings.Cut(p[i:], ": "); ok {
				return "- " + strings.TrimSpace(tail), nil
			}
		}
		return "- " + p, nil
	default:
		return "This is a mock answer based on your consultation. The generated report is fictional; please consult a real clinician for actual medical advice.", nil
	}
}
