package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	summary := "### Symptoms:\nfever and cough\n\n### Safety Notes:\n- avoid aspirin\n- fictional advice\n\n"
	sections := SplitSections(summary)

	require.Len(t, sections, 2)
	assert.Equal(t, "Symptoms", sections[0].Title)
	assert.Equal(t, "fever and cough", sections[0].Body)
	assert.Equal(t, "Safety Notes", sections[1].Title)
	assert.Equal(t, "- avoid aspirin\n- fictional advice", sections[1].Body)
}

func TestSplitSectionsChunkWithoutColon(t *testing.T) {
	sections := SplitSections("### just some text without a title marker")
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Title)
	assert.Equal(t, "just some text without a title marker", sections[0].Body)
}

func TestSplitSectionsSkipsEmptyChunks(t *testing.T) {
	assert.Empty(t, SplitSections(""))
	assert.Empty(t, SplitSections("###  \n###"))
}

func TestRenderRequiresSummary(t *testing.T) {
	_, err := Render("", "Spanish")
	assert.ErrorIs(t, err, ErrNoSummary)

	_, err = Render("   \n", "Spanish")
	assert.ErrorIs(t, err, ErrNoSummary)
}

func TestRenderProducesPDF(t *testing.T) {
	summary := "### Symptoms:\nfever and cough\n\n### Diagnosis:\n- probably the flu\n\n"
	out, err := Render(summary, "English")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "%PDF-"), "output should start with the PDF magic bytes")
	assert.Greater(t, len(out), 500)
}

func TestRenderToleratesNonLatinText(t *testing.T) {
	// Characters outside the built-in code page degrade to replacement
	// glyphs; rendering must still succeed.
	summary := "### लक्षण:\nबुखार और खांसी\n\n### 診断:\nインフルエンザ\n\n"
	out, err := Render(summary, "हिन्दी")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}
