package core

// prompts.go collects the model prompt templates and the scripted
// bot messages. Keeping them in one file makes the conversation script
// easy to tweak without touching the flow logic.

const (
	// diagnosisPrompt demands the four exact headings so the response can
	// be sliced deterministically by the assembler. The headings here and
	// in assembler.go must stay in sync.
	diagnosisPrompt = "You are a fictional medical AI for a demo. Based on the following symptoms and allergies, provide: " +
		"1. A potential diagnosis. " +
		"2. A hypothetical new drug concept that could treat this condition. " +
		"3. Hypothetical dosage instructions. " +
		"4. Safety considerations related to the patient's allergies.\n\n" +
		"Symptoms: %s\nAllergies: %s\n\n" +
		"Format your response with these exact headings, each on its own line and in this order:\n" +
		"Diagnosis:\nProposed New Drug:\nHypothetical Dosage/Instructions:\nAllergy/Safety Note:\n\n" +
		"Keep it concise and clearly fictional."

	simplifyDiagnosisPrompt = "Simplify this medical diagnosis into 2-3 short bullet points: "
	simplifyDrugPrompt      = "Simplify this drug concept into 2-3 short bullet points about what it is and how it works: "
	simplifyDosagePrompt    = "Simplify this dosage information into 2-3 short bullet points about dosage amount, frequency, and how to take it: "
	simplifySafetyPrompt    = "Simplify this safety information into 2-3 short bullet points about allergies and side effects: "

	qnaPrompt = "Previous symptoms: %s\n" +
		"Previous allergies: %s\n" +
		"Previous diagnosis and drug concept: %s\n\n" +
		"User question: %s\n\n" +
		"Respond in a clear, concise way that would be easy to translate to another language."
)

const (
	msgSelectedLanguage    = "Thank you. Your selected language is %s."
	msgAskSymptoms         = "Please describe your symptoms."
	msgUnsupportedLanguage = "Sorry, '%s' is not a supported language. Please select from: %s"
	msgReAskSymptoms       = "Please describe your symptoms so I can assist you."
	msgAskAllergies        = "Thank you for sharing your symptoms. Do you have any known allergies? If none, please say 'None'."
	msgAnalyzing           = "Thank you. I'm analyzing your symptoms and allergies to generate a diagnosis and drug concept. This may take a moment..."
	msgThinking            = "I'm thinking about your question..."
	msgTurnFailed          = "An error occurred: %v. Please try again or restart the conversation."
)

// Completion calls other than translation run warm.
const completionTemperature = 0.7
