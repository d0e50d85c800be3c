package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_AllLanguagesHaveBothPlaceholdersOnce(t *testing.T) {
	for _, lang := range Supported() {
		t.Run(string(lang), func(t *testing.T) {
			template, err := Build(lang)
			require.NoError(t, err)
			assert.Equal(t, 1, strings.Count(template.Template, "{{.context}}"))
			assert.Equal(t, 1, strings.Count(template.Template, "{{.question}}"))
		})
	}
}

func TestBuild_InstructionsMatchLanguage(t *testing.T) {
	markers := map[Language]string{
		English: "You must answer in English.",
		French:  "Tu dois répondre en français.",
		German:  "Du musst auf Deutsch antworten.",
		Italian: "Devi rispondere in italiano.",
	}
	for lang, marker := range markers {
		template, err := Build(lang)
		require.NoError(t, err)
		assert.Contains(t, template.Template, marker)
	}
}

func TestBuild_UnsupportedLanguage(t *testing.T) {
	for _, lang := range []string{"es", "EN", "", "english"} {
		_, err := Build(Language(lang))
		require.Error(t, err)

		var langErr *UnsupportedLanguageError
		require.True(t, errors.As(err, &langErr))
		assert.Equal(t, lang, langErr.Language)
		assert.Contains(t, err.Error(), "en, fr, de, it")
	}
}

func TestBuild_SubstitutesVerbatim(t *testing.T) {
	template, err := Build(English)
	require.NoError(t, err)

	context := "Line with <tags> & \"quotes\".\n\nSecond paragraph."
	question := "What about {braces} and $signs?"
	filled, err := template.Format(map[string]any{
		"context":  context,
		"question": question,
	})
	require.NoError(t, err)
	assert.Contains(t, filled, context)
	assert.Contains(t, filled, question)
}

func TestSupported_StableOrder(t *testing.T) {
	assert.Equal(t, []Language{English, French, German, Italian}, Supported())
}
