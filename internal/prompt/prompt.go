// Package prompt builds the language-specific instruction template fed
// to the model. The instructions and the required answer language always
// match, so the output language is steered purely by prompt content.
package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// Language selects the instruction set and the answer language.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
	German  Language = "de"
	Italian Language = "it"
)

// UnsupportedLanguageError names the requested language and the
// supported set.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: en, fr, de, it)", e.Language)
}

// Supported lists the supported languages in a stable order.
func Supported() []Language {
	return []Language{English, French, German, Italian}
}

// Each instruction set carries the same five rules, localized: answer
// from the given context only, never fabricate, use textual descriptions
// of supplied images, three sentences maximum, answer in that language.
var instructions = map[Language]string{
	English: "Use the following pieces of context to answer the question at the end. " +
		"Don't try to make up an answer and only use the information you know. " +
		"If images are provided, use their textual description to also answer the question. " +
		"Use three sentences maximum and keep the answer as concise as possible. " +
		"You must answer in English.",
	French: "Utilise les éléments de contexte suivants pour répondre à la question posée à la fin. " +
		"N'essaie pas d'inventer une réponse et utilise uniquement les informations dont tu disposes. " +
		"Si des images sont fournies, utilise leur description textuelle pour répondre à la question. " +
		"Utilise trois phrases au maximum et garde la réponse aussi concise que possible. " +
		"Tu dois répondre en français.",
	German: "Verwende die folgenden Kontextauszüge, um die Frage am Ende zu beantworten. " +
		"Versuche nicht, eine Antwort zu erfinden, und verwende nur die Informationen, die dir vorliegen. " +
		"Falls Bilder bereitgestellt werden, nutze deren Textbeschreibung ebenfalls für die Antwort. " +
		"Verwende höchstens drei Sätze und halte die Antwort so knapp wie möglich. " +
		"Du musst auf Deutsch antworten.",
	Italian: "Usa i seguenti elementi di contesto per rispondere alla domanda alla fine. " +
		"Non cercare di inventare una risposta e usa solo le informazioni di cui disponi. " +
		"Se vengono fornite immagini, usa la loro descrizione testuale per rispondere alla domanda. " +
		"Usa al massimo tre frasi e mantieni la risposta il più concisa possibile. " +
		"Devi rispondere in italiano.",
}

// Build returns the instruction template for the given language. The
// template substitutes context and question verbatim; the model consumes
// raw text, so no escaping is applied.
func Build(lang Language) (prompts.PromptTemplate, error) {
	system, ok := instructions[lang]
	if !ok {
		return prompts.PromptTemplate{}, &UnsupportedLanguageError{Language: string(lang)}
	}
	template := "<s>[INST]<<SYS>>" + system + "\n{{.context}}<</SYS>>\n{{.question}}[/INST]"
	return prompts.NewPromptTemplate(template, []string{"context", "question"}), nil
}
