package pkg

import "time"

// Stage identifies where a consultation is in its scripted intake flow.
// Stages only move forward; the only way back to an earlier stage is an
// explicit reset or the internal failure reset.
type Stage string

const (
	StageAskLanguage      Stage = "ask_language"
	StageAskSymptoms      Stage = "ask_symptoms"
	StageAskAllergies     Stage = "ask_allergies"
	StageGenerateResponse Stage = "generate_response"
	StageGeneralQnA       Stage = "general_qna"
)

// Role identifies the author of a history turn sent to the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one English-language history entry. The slice of turns is the
// replay context handed to the completion client on follow-up questions.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Exchange is one user/bot message pair in the user's chosen language,
// kept for rendering the chat transcript.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Report holds the four sections extracted from a generated diagnosis
// response. A section whose heading was absent holds "Not found".
type Report struct {
	Diagnosis   string `json:"diagnosis"`
	DrugConcept string `json:"drug_concept"`
	Dosage      string `json:"dosage"`
	SafetyNote  string `json:"safety_note"`
}

// Consultation is the full state of one chat session. It is keyed by a
// server-generated UUID and owned by a session store; handlers never share
// a live pointer across requests.
type Consultation struct {
	ID                string     `json:"id"`
	Stage             Stage      `json:"stage"`
	Language          string     `json:"language"`
	LangCode          string     `json:"lang_code"`
	SymptomsUserLang  string     `json:"symptoms_user_lang"`
	SymptomsEN        string     `json:"symptoms_en"`
	AllergiesUserLang string     `json:"allergies_user_lang"`
	AllergiesEN       string     `json:"allergies_en"`
	LastReportEN      string     `json:"last_report_en"`
	EnglishSummary    string     `json:"english_summary"`
	TranslatedSummary string     `json:"translated_summary"`
	History           []Turn     `json:"history"`
	Transcript        []Exchange `json:"transcript"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int64      `json:"version"`
}

// NewConsultation returns an empty consultation at the language-selection
// stage.
func NewConsultation(id string) *Consultation {
	now := time.Now().UTC()
	return &Consultation{
		ID:        id,
		Stage:     StageAskLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Stores hand out clones so a caller can never
// mutate state that another request is reading.
func (c *Consultation) Clone() *Consultation {
	cp := *c
	cp.History = append([]Turn(nil), c.History...)
	cp.Transcript = append([]Exchange(nil), c.Transcript...)
	return &cp
}

// Reset clears everything back to the language-selection stage. Used by the
// explicit new-consultation action; the ID and creation time survive.
func (c *Consultation) Reset() {
	c.Stage = StageAskLanguage
	c.Language = ""
	c.LangCode = ""
	c.clearProgress()
}

// ResetPreservingLanguage clears the in-progress conversation after an
// internal failure but keeps the language selection, so the user restarts
// at the symptoms question instead of from scratch.
func (c *Consultation) ResetPreservingLanguage() {
	if c.LangCode == "" {
		c.Reset()
		return
	}
	c.Stage = StageAskSymptoms
	c.clearProgress()
}

func (c *Consultation) clearProgress() {
	c.SymptomsUserLang = ""
	c.SymptomsEN = ""
	c.AllergiesUserLang = ""
	c.AllergiesEN = ""
	c.LastReportEN = ""
	c.EnglishSummary = ""
	c.TranslatedSummary = ""
	c.History = nil
	c.Transcript = nil
}

// ReportReady reports whether a translated summary exists for export.
func (c *Consultation) ReportReady() bool { return c.TranslatedSummary != "" }

// MessageRequest is the body of a send-message call.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries the outcome of one processed turn back to the UI.
// Notice holds the transient "working" message shown for long model calls.
type MessageResponse struct {
	Reply             string `json:"reply"`
	Notice            string `json:"notice,omitempty"`
	Stage             Stage  `json:"stage"`
	EnglishSummary    string `json:"english_summary,omitempty"`
	TranslatedSummary string `json:"translated_summary,omitempty"`
	ReportReady       bool   `json:"report_ready"`
}

// ConsultationView is the read-side DTO for a session.
type ConsultationView struct {
	ID                string     `json:"consultation_id"`
	Stage             Stage      `json:"stage"`
	Language          string     `json:"language,omitempty"`
	LangCode          string     `json:"lang_code,omitempty"`
	Transcript        []Exchange `json:"transcript"`
	EnglishSummary    string     `json:"english_summary,omitempty"`
	TranslatedSummary string     `json:"translated_summary,omitempty"`
	ReportReady       bool       `json:"report_ready"`
}

// View builds the wire representation of a consultation.
func (c *Consultation) View() ConsultationView {
	transcript := c.Transcript
	if transcript == nil {
		transcript = []Exchange{}
	}
	return ConsultationView{
		ID:                c.ID,
		Stage:             c.Stage,
		Language:          c.Language,
		LangCode:          c.LangCode,
		Transcript:        transcript,
		EnglishSummary:    c.EnglishSummary,
		TranslatedSummary: c.TranslatedSummary,
		ReportReady:       c.ReportReady(),
	}
}

// ConsultationPreview is one row in the archive listing.
type ConsultationPreview struct {
	ID        string    `json:"consultation_id"`
	Language  string    `json:"language"`
	Stage     Stage     `json:"stage"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
