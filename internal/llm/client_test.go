package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "client unavailable",
			err:  fmt.Errorf("%w: no API key", ErrUnavailable),
			want: "Error: AI service not available. Cannot provide medical information.",
		},
		{
			name: "unauthorized status",
			err:  &openai.APIError{HTTPStatusCode: 401, Message: "bad key"},
			want: "Error: Unauthorized. Check your API key.",
		},
		{
			name: "unauthorized by message",
			err:  errors.New("API key not valid for this project"),
			want: "Error: Unauthorized. Check your API key.",
		},
		{
			name: "rate limited status",
			err:  &openai.APIError{HTTPStatusCode: 429, Message: "slow down"},
			want: "Error: Rate limit exceeded. Try again later.",
		},
		{
			name: "quota exhausted by message",
			err:  errors.New("insufficient quota for this project"),
			want: "Error: Rate limit exceeded. Try again later.",
		},
		{
			name: "anything else",
			err:  errors.New("connection refused"),
			want: "Error communicating with the AI service: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FailureMessage(tt.err)
			assert.True(t, strings.HasPrefix(got, tt.want),
				"FailureMessage(%v) = %q, want prefix %q", tt.err, got, tt.want)
		})
	}
}

func TestUnavailableClient(t *testing.T) {
	_, err := Unavailable{}.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Unavailable{Reason: errors.New("no GEMINI_API_KEY")}.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no GEMINI_API_KEY")
}

func TestMockClientEchoesTranslations(t *testing.T) {
	m := NewMockClient()
	out, err := m.Complete(context.Background(), CompletionRequest{
		Prompt: "Translate the following text from English to Spanish. Return ONLY the translated text, without any introductory phrases, explanations, or quotation marks.\n\nText to translate: Please describe your symptoms.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Please describe your symptoms.", out)
}

func TestMockClientReturnsFullReport(t *testing.T) {
	m := NewMockClient()
	out, err := m.Complete(context.Background(), CompletionRequest{
		Prompt: "Symptoms: fever\nAllergies: none\n\nFormat your response with these exact headings, each on its own line and in this order:\nDiagnosis:\n...",
	})
	require.NoError(t, err)
	for _, heading := range []string{"Diagnosis:", "Proposed New Drug:", "Hypothetical Dosage/Instructions:", "Allergy/Safety Note:"} {
		assert.Contains(t, out, heading)
	}
}

func TestMockClientSimplifiesToBullet(t *testing.T) {
	m := NewMockClient()
	out, err := m.Complete(context.Background(), CompletionRequest{
		Prompt: "Simplify this medical diagnosis into 2-3 short bullet points: Acute viral pharyngitis.",
	})
	require.NoError(t, err)
	assert.Equal(t, "- Acute viral pharyngitis.", out)
}

func TestMockClientAnswersQuestions(t *testing.T) {
	m := NewMockClient()
	out, err := m.Complete(context.Background(), CompletionRequest{
		Prompt: "Previous symptoms: fever\nPrevious allergies: none\nPrevious diagnosis and drug concept: ...\n\nUser question: Is it safe?\n\nRespond in a clear, concise way that would be easy to translate to another language.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "mock answer")
	assert.Contains(t, out, "fictional")
}
