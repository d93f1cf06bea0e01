package answer

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/analysis/language"
	"github.com/zhouzirui/healthchat/internal/analysis/topic"
	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

// EmptyPrompt is returned for blank questions.
const EmptyPrompt = "⚠️ Please type a question."

var genericReplies = map[string]string{
	language.English: "I understand you're asking about health. Could you please rephrase your question or ask about:\n• HIV treatment and ARVs\n• Maternal or child health\n• Nutrition or hygiene\n• Specific medications\n• Disease symptoms or prevention",
	language.Sesotho: "Ke utloisisa hore u botsa ka bophelo. Ka kopo, buisa potso kapa u botsise ka:\n• Kalafo ea HIV le li-ARV\n• Bophelo ba bokhachane kapa bana\n• Phepo kapa bohloeki\n• Meriana e itseng\n• Matšoao a malwetse kapa thibelo",
}

var disclaimers = map[string]string{
	language.English: "\n\nNote: This is health information, not medical advice. Consult a healthcare professional.",
	language.Sesotho: "\n\nTlhokomeliso: Tsena ke tlhahisoleseding ya bophelo, eseng keletso ea bongaka. Buisana le setsebi sa bophelo.",
}

var (
	fallbackArvMarkers  = []string{"arv", "art", "hiv drug", "antiretroviral"}
	fallbackListMarkers = []string{"example", "list", "type"}
)

// Source tells which stage produced a reply.
type Source string

const (
	SourceEmpty     Source = "empty"
	SourceKnowledge Source = "knowledge"
	SourceQA        Source = "qa"
	SourceKeyword   Source = "keyword"
	SourceGeneric   Source = "generic"
)

// QA answers free questions from the knowledge text when no topic matched.
type QA interface {
	Answer(ctx context.Context, question, lang string) (string, error)
}

// Reply is the outcome of answering one question.
type Reply struct {
	Text     string
	Language string
	Source   Source
	Match    topic.Match
}

// Service answers health questions from the knowledge base.
type Service struct {
	store   knowledge.Store
	matcher *topic.Matcher
	qa      QA
}

// NewService builds the vocabulary from store. qa may be nil.
func NewService(store knowledge.Store, qa QA) (*Service, error) {
	matcher, err := topic.NewMatcher(store.List())
	if err != nil {
		return nil, err
	}
	return &Service{
		store:   store,
		matcher: matcher,
		qa:      qa,
	}, nil
}

// Reply answers text in the requested language. Every non-empty reply ends
// with the disclaimer of the language it was written in.
func (s *Service) Reply(ctx context.Context, text, lang string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Text: EmptyPrompt, Language: language.English, Source: SourceEmpty}
	}

	lang = language.Resolve(text, lang)
	match := s.matcher.Match(text)
	log.Debug().
		Str("lang", lang).
		Str("hint", language.Hint(text)).
		Str("kind", string(match.Kind)).
		Str("key", match.Key).
		Str("term", match.Term).
		Str("question", string(match.Question)).
		Msg("matched question")

	reply := Reply{Language: lang, Match: match}
	var body string
	if match.Found() {
		if found, ok := s.lookup(match.Key, lang); ok {
			body, reply.Source = found, SourceKnowledge
		}
	}

	if body == "" && s.qa != nil {
		answer, err := s.qa.Answer(ctx, text, lang)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("qa fallback failed")
		case len(strings.Fields(answer)) >= 2:
			body, reply.Source = strings.TrimSpace(answer), SourceQA
		}
	}

	if body == "" {
		clean := topic.Normalize(text)
		if containsAny(clean, fallbackArvMarkers) {
			key := "art"
			if containsAny(clean, fallbackListMarkers) {
				key = "arv_examples"
			}
			if found, ok := s.lookup(key, lang); ok {
				body, reply.Source = found, SourceKeyword
			}
		}
	}

	if body == "" {
		body, reply.Source = genericReplies[lang], SourceGeneric
	}

	reply.Text = body + disclaimers[lang]
	return reply
}

// Entries returns the number of entries per kind.
func (s *Service) Entries() map[knowledge.Kind]int {
	counts := make(map[knowledge.Kind]int)
	for _, entry := range s.store.List() {
		counts[entry.Kind]++
	}
	return counts
}

// lookup searches kb, then medicines, then glossary for key.
func (s *Service) lookup(key, lang string) (string, bool) {
	for _, kind := range []knowledge.Kind{knowledge.KindKB, knowledge.KindMedicine, knowledge.KindGlossary} {
		entry, ok := s.store.Find(kind, key)
		if !ok {
			continue
		}
		if text, ok := entry.Localized(lang); ok {
			return text, true
		}
	}
	return "", false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
