package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeepikaKgithub/PharmaGEN/internal/language"
	"github.com/DeepikaKgithub/PharmaGEN/internal/llm"
	"github.com/DeepikaKgithub/PharmaGEN/internal/observability"
	"github.com/DeepikaKgithub/PharmaGEN/internal/translate"
	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

// Sequencer drives a consultation through its scripted stages. Turn
// processing is strictly sequential: a handful of blocking model calls in
// order, no fan-out, no retries.
type Sequencer struct {
	client     llm.Client
	translator *translate.Translator
}

func NewSequencer(client llm.Client, translator *translate.Translator) *Sequencer {
	return &Sequencer{client: client, translator: translator}
}

// TurnResult is what one processed user message produces. Notice carries
// the transient "working" message for stages with long model calls.
type TurnResult struct {
	Reply  string
	Notice string
}

// Advance processes one user message against the consultation's current
// stage, mutating the consultation in place. Stages only move forward.
func (s *Sequencer) Advance(ctx context.Context, c *pkg.Consultation, userText string) TurnResult {
	switch c.Stage {
	case pkg.StageAskSymptoms:
		return s.askSymptoms(ctx, c, userText)
	case pkg.StageAskAllergies:
		return s.generateReport(ctx, c, userText)
	case pkg.StageGeneralQnA:
		return s.answerQuestion(ctx, c, userText)
	default:
		return s.askLanguage(ctx, c, userText)
	}
}

func (s *Sequencer) askLanguage(ctx context.Context, c *pkg.Consultation, input string) TurnResult {
	name, code, ok := language.Lookup(input)
	if !ok {
		// Not translated: there is no trusted language to translate into yet.
		reply := fmt.Sprintf(msgUnsupportedLanguage, strings.TrimSpace(input), strings.Join(language.Names(), ", "))
		c.Transcript = append(c.Transcript, pkg.Exchange{User: input, Bot: reply})
		return TurnResult{Reply: reply}
	}

	c.Language = name
	c.LangCode = code
	c.Stage = pkg.StageAskSymptoms

	confirmEN := fmt.Sprintf(msgSelectedLanguage, name)
	replyEN := confirmEN + "\n\n" + msgAskSymptoms
	reply := replyEN
	if code != "en" {
		reply = s.toUser(ctx, c, confirmEN) + "\n\n" + s.toUser(ctx, c, msgAskSymptoms)
	}
	s.record(c, "User selected language: "+name, replyEN, input, reply)
	observability.LoggerFromContext(ctx).Info("language selected",
		"consultation", c.ID, "language", name)
	return TurnResult{Reply: reply}
}

func (s *Sequencer) askSymptoms(ctx context.Context, c *pkg.Consultation, input string) TurnResult {
	symptoms := strings.TrimSpace(input)
	if symptoms == "" {
		reply := s.toUser(ctx, c, msgReAskSymptoms)
		c.Transcript = append(c.Transcript, pkg.Exchange{User: input, Bot: reply})
		return TurnResult{Reply: reply}
	}

	c.SymptomsUserLang = symptoms
	c.SymptomsEN = s.toEnglish(ctx, c, symptoms)
	c.Stage = pkg.StageAskAllergies

	reply := s.toUser(ctx, c, msgAskAllergies)
	s.record(c, "Symptoms: "+c.SymptomsEN, msgAskAllergies, symptoms, reply)
	return TurnResult{Reply: reply}
}

// generateReport handles the allergies answer and carries the consultation
// through report generation into open Q&A in one compound transition; the
// generate_response stage is never observable between turns.
func (s *Sequencer) generateReport(ctx context.Context, c *pkg.Consultation, input string) TurnResult {
	logger := observability.LoggerFromContext(ctx)

	allergies := strings.TrimSpace(input)
	c.AllergiesUserLang = allergies
	c.AllergiesEN = s.toEnglish(ctx, c, allergies)
	c.History = append(c.History, pkg.Turn{Role: pkg.RoleUser, Text: "Allergies: " + c.AllergiesEN})

	notice := s.toUser(ctx, c, msgAnalyzing)
	c.Stage = pkg.StageGenerateResponse

	full := s.generate(ctx, fmt.Sprintf(diagnosisPrompt, c.SymptomsEN, c.AllergiesEN), nil)
	c.LastReportEN = full
	c.History = append(c.History, pkg.Turn{Role: pkg.RoleModel, Text: full})
	c.Stage = pkg.StageGeneralQnA
	logger.Info("report generated", "consultation", c.ID)

	report := ExtractReport(full)
	simplified := [4]string{
		s.generate(ctx, simplifyDiagnosisPrompt+report.Diagnosis, nil),
		s.generate(ctx, simplifyDrugPrompt+report.DrugConcept, nil),
		s.generate(ctx, simplifyDosagePrompt+report.Dosage, nil),
		s.generate(ctx, simplifySafetyPrompt+report.SafetyNote, nil),
	}

	c.EnglishSummary = buildEnglishSummary([6]string{
		c.SymptomsEN, c.AllergiesEN,
		simplified[0], simplified[1], simplified[2], simplified[3],
	})

	var titles [6]string
	for i, label := range summaryLabels {
		titles[i] = s.toUser(ctx, c, label)
	}
	values := [6]string{
		c.SymptomsUserLang, c.AllergiesUserLang,
		s.toUser(ctx, c, simplified[0]), s.toUser(ctx, c, simplified[1]),
		s.toUser(ctx, c, simplified[2]), s.toUser(ctx, c, simplified[3]),
	}
	c.TranslatedSummary = buildTranslatedSummary(titles, values)

	reply := s.toUser(ctx, c, full)
	c.Transcript = append(c.Transcript, pkg.Exchange{User: allergies, Bot: reply})
	return TurnResult{Reply: reply, Notice: notice}
}

func (s *Sequencer) answerQuestion(ctx context.Context, c *pkg.Consultation, input string) TurnResult {
	questionEN := s.toEnglish(ctx, c, input)
	c.History = append(c.History, pkg.Turn{Role: pkg.RoleUser, Text: questionEN})

	notice := s.toUser(ctx, c, msgThinking)

	prompt := fmt.Sprintf(qnaPrompt,
		orNone(c.SymptomsEN), orNone(c.AllergiesEN), orNone(c.LastReportEN), questionEN)
	// The question itself is embedded in the prompt; replay only the turns
	// before it.
	answer := s.generate(ctx, prompt, c.History[:len(c.History)-1])
	c.History = append(c.History, pkg.Turn{Role: pkg.RoleModel, Text: answer})

	reply := s.toUser(ctx, c, answer)
	c.Transcript = append(c.Transcript, pkg.Exchange{User: input, Bot: reply})
	return TurnResult{Reply: reply, Notice: notice}
}

// generate runs one completion call, degrading a failure into the
// descriptive bot-visible message so the conversation continues.
func (s *Sequencer) generate(ctx context.Context, prompt string, history []pkg.Turn) string {
	out, err := s.client.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: completionTemperature,
		History:     history,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("completion call failed", "err", err)
		return llm.FailureMessage(err)
	}
	return out
}

func (s *Sequencer) toEnglish(ctx context.Context, c *pkg.Consultation, text string) string {
	if c.LangCode == "" || c.LangCode == "en" {
		return text
	}
	return s.translator.Translate(ctx, text, c.LangCode, "en")
}

func (s *Sequencer) toUser(ctx context.Context, c *pkg.Consultation, text string) string {
	if c.LangCode == "" || c.LangCode == "en" {
		return text
	}
	return s.translator.Translate(ctx, text, "en", c.LangCode)
}

// record appends the English forms of a completed exchange to the replay
// history and the user-language pair to the transcript.
func (s *Sequencer) record(c *pkg.Consultation, userEN, botEN, userText, botText string) {
	c.History = append(c.History,
		pkg.Turn{Role: pkg.RoleUser, Text: userEN},
		pkg.Turn{Role: pkg.RoleModel, Text: botEN},
	)
	c.Transcript = append(c.Transcript, pkg.Exchange{User: userText, Bot: botText})
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
