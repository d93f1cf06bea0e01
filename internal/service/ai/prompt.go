package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

// NoAnswer is what the model is told to reply when the context does not cover
// the question.
const NoAnswer = "UNKNOWN"

var languageNames = map[string]string{
	"en": "English",
	"st": "Sesotho",
}

// PromptBuilder renders the system prompt for the QA chain.
type PromptBuilder struct {
	context string
}

// NewPromptBuilder joins the English text of every entry into one context block.
func NewPromptBuilder(store knowledge.Store) *PromptBuilder {
	var b strings.Builder
	for _, entry := range store.List() {
		text, ok := entry.Localized("en")
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", entry.Key, text)
	}
	return &PromptBuilder{context: b.String()}
}

// System returns the system prompt asking for an answer in lang.
func (p *PromptBuilder) System(lang string) string {
	name, ok := languageNames[lang]
	if !ok {
		name = languageNames["en"]
	}
	return fmt.Sprintf(`You are a community health information assistant.
Answer the question in %s using only the facts below, in at most three short sentences.
If the facts do not answer the question, reply with exactly %s.

Facts:
%s`, name, NoAnswer, p.context)
}
