// Package translate wraps the completion client as a text translator.
// Translation is best-effort by contract: any failure returns the input
// unchanged so the consultation can keep moving in English.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeepikaKgithub/PharmaGEN/internal/language"
	"github.com/DeepikaKgithub/PharmaGEN/internal/llm"
	"github.com/DeepikaKgithub/PharmaGEN/internal/observability"
)

// Low temperature keeps translations literal.
const translationTemperature = 0.1

type Translator struct {
	client llm.Client
}

func New(client llm.Client) *Translator {
	return &Translator{client: client}
}

// Translate converts text between two registry language codes. An unknown
// source code means auto-detect; an unknown destination code defaults to
// English. When source and destination resolve to the same known language
// the input is returned without a service call.
func (t *Translator) Translate(ctx context.Context, text, srcCode, dstCode string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	src := srcCode
	if !language.ValidCode(src) {
		src = ""
	}
	dst := dstCode
	if !language.ValidCode(dst) {
		dst = "en"
	}
	if src != "" && src == dst {
		return text
	}

	dstName, _ := language.NameFor(dst)
	var prompt string
	if src == "" {
		prompt = fmt.Sprintf(
			"Translate the following text to %s. Return ONLY the translated text, without any introductory phrases, explanations, or quotation marks.\n\nText to translate: %s",
			dstName, text)
	} else {
		srcName, _ := language.NameFor(src)
		prompt = fmt.Sprintf(
			"Translate the following text from %s to %s. Return ONLY the translated text, without any introductory phrases, explanations, or quotation marks.\n\nText to translate: %s",
			srcName, dstName, text)
	}

	out, err := t.client.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Temperature: translationTemperature,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("translation failed, keeping original text",
			"src", srcCode, "dst", dstCode, "err", err)
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text
	}
	return out
}
