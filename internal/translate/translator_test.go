package translate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepikaKgithub/PharmaGEN/internal/llm"
	"github.com/DeepikaKgithub/PharmaGEN/internal/translate"
)

type fakeClient struct {
	out   string
	err   error
	calls []llm.CompletionRequest
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.out, f.err
}

func TestTranslateKnownPairBuildsDirectedPrompt(t *testing.T) {
	client := &fakeClient{out: "hello"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "en")

	assert.Equal(t, "hello", got)
	require.Len(t, client.calls, 1)
	req := client.calls[0]
	assert.Contains(t, req.Prompt, "Translate the following text from Spanish to English.")
	assert.Contains(t, req.Prompt, "Return ONLY the translated text")
	assert.Contains(t, req.Prompt, "Text to translate: hola")
	assert.Equal(t, float32(0.1), req.Temperature)
	assert.Empty(t, req.History)
}

func TestTranslateSameLanguageSkipsServiceCall(t *testing.T) {
	client := &fakeClient{out: "should not be used"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "es")

	assert.Equal(t, "hola", got)
	assert.Empty(t, client.calls)
}

func TestTranslateBlankInputSkipsServiceCall(t *testing.T) {
	client := &fakeClient{out: "should not be used"}
	tr := translate.New(client)

	assert.Equal(t, "", tr.Translate(context.Background(), "", "es", "en"))
	assert.Equal(t, "   ", tr.Translate(context.Background(), "   ", "es", "en"))
	assert.Empty(t, client.calls)
}

func TestTranslateUnknownSourceAutoDetects(t *testing.T) {
	client := &fakeClient{out: "Hallo"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hello", "zz", "de")

	assert.Equal(t, "Hallo", got)
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].Prompt, "Translate the following text to German.")
	assert.NotContains(t, client.calls[0].Prompt, "from")
}

func TestTranslateUnknownDestinationDefaultsToEnglish(t *testing.T) {
	client := &fakeClient{out: "hello"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "zz")

	assert.Equal(t, "hello", got)
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].Prompt, "from Spanish to English")
}

func TestTranslateEnglishToUnknownDestinationShortCircuits(t *testing.T) {
	client := &fakeClient{out: "should not be used"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hello", "en", "zz")

	assert.Equal(t, "hello", got)
	assert.Empty(t, client.calls)
}

func TestTranslateFailureReturnsInput(t *testing.T) {
	client := &fakeClient{err: errors.New("service down")}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "en")
	assert.Equal(t, "hola", got)
}

func TestTranslateBlankOutputReturnsInput(t *testing.T) {
	client := &fakeClient{out: "  \n"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "en")
	assert.Equal(t, "hola", got)
}

func TestTranslateTrimsOutput(t *testing.T) {
	client := &fakeClient{out: "  hello  \n"}
	tr := translate.New(client)

	got := tr.Translate(context.Background(), "hola", "es", "en")
	assert.Equal(t, "hello", got)
}
