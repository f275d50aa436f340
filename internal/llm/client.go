package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

// CompletionRequest is one blocking call to a hosted model. History, when
// present, is replayed ahead of the prompt so follow-up answers keep the
// consultation context.
type CompletionRequest struct {
	Prompt      string
	Temperature float32
	History     []pkg.Turn
}

// Client is the completion surface the rest of the service depends on.
// Implementations must not retry: one failed call is one failed call, the
// caller decides how to degrade.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrUnavailable marks a client that could not be constructed (missing
// credential, failed init). The server still runs; every consumer degrades.
var ErrUnavailable = errors.New("completion client unavailable")

// Unavailable is installed in place of a real provider when none could be
// built. Calls fail immediately with ErrUnavailable.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if u.Reason != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, u.Reason)
	}
	return "", ErrUnavailable
}

// FailureMessage converts a completion error into the bot-visible string
// shown in place of a model answer. The mapping distinguishes credential
// and quota failures so the operator can tell them apart from the chat.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnavailable) {
		return "Error: AI service not available. Cannot provide medical information."
	}
	switch {
	case hasStatus(err, 401) || containsAny(err, "unauthorized", "api key", "401"):
		return "Error: Unauthorized. Check your API key. " + err.Error()
	case hasStatus(err, 429) || containsAny(err, "quota", "rate limit", "429"):
		return "Error: Rate limit exceeded. Try again later. " + err.Error()
	default:
		return "Error communicating with the AI service: " + err.Error()
	}
}

func hasStatus(err error, code int) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == code
	}
	return false
}

func containsAny(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
