package topic

import (
	"sort"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

// QuestionType describes what kind of answer the user asked for.
type QuestionType string

const (
	General    QuestionType = "general"
	Examples   QuestionType = "examples"
	Definition QuestionType = "definition"
)

const (
	overlapThreshold = 0.3
	fuzzyCutoff      = 0.4
)

// Match is the result of resolving a question to a knowledge entry.
type Match struct {
	Kind     knowledge.Kind
	Key      string
	Term     string
	Question QuestionType
}

// Found reports whether a knowledge entry was resolved.
func (m Match) Found() bool {
	return m.Key != ""
}

type vocabEntry struct {
	kind   knowledge.Kind
	key    string
	weight float64
	words  []string
}

type specialRule struct {
	kind     knowledge.Kind
	key      string
	patterns []string
}

// Phrases that override vocabulary lookup, checked in priority order.
var specialRules = []specialRule{
	{kind: knowledge.KindMedicine, key: "arv_examples", patterns: []string{
		"examples of arv", "arv examples", "list of arv", "arv drugs", "hiv drugs list",
		"arv medications", "types of arv", "arv list", "hiv medications", "give me examples of arv",
	}},
	{kind: knowledge.KindGlossary, key: "art", patterns: []string{
		"what is arv", "arv keng", "arv meaning", "define arv", "arv ke eng", "art keng", "art ke eng",
	}},
	{kind: knowledge.KindGlossary, key: "hiv", patterns: []string{
		"what is hiv", "hiv keng", "hiv meaning", "define hiv", "hiv ke eng",
	}},
}

var (
	medicationTerms = []string{"arv", "art", "hiv drug", "antiretroviral", "medication", "medicine", "drug", "pill", "tablet"}
	arvMarkers      = []string{"arv", "art", "hiv drug", "antiretroviral"}
	listingMarkers  = []string{"example", "list", "type", "name"}
)

var weights = map[knowledge.Kind]float64{
	knowledge.KindKB:       1.0,
	knowledge.KindGlossary: 1.0,
	knowledge.KindMedicine: 1.2,
}

const medicationWeight = 0.8

// Matcher resolves free text questions to knowledge entries.
type Matcher struct {
	terms    []string
	vocab    map[string]vocabEntry
	special  *goahocorasick.Machine
	patterns map[string]patternRef
}

type patternRef struct {
	rule  int
	order int
}

// NewMatcher builds the vocabulary from entries. Later sources override
// earlier ones for the same term but keep its original position.
func NewMatcher(entries []knowledge.Entry) (*Matcher, error) {
	m := &Matcher{
		vocab:    make(map[string]vocabEntry),
		patterns: make(map[string]patternRef),
	}

	for _, kind := range []knowledge.Kind{knowledge.KindKB, knowledge.KindGlossary, knowledge.KindMedicine} {
		for _, entry := range entries {
			if entry.Kind != kind {
				continue
			}
			if kind == knowledge.KindKB {
				for _, tag := range entry.Tags {
					m.put(Normalize(tag), kind, entry.Key, weights[kind], true)
				}
				continue
			}
			m.put(Normalize(entry.Key), kind, entry.Key, weights[kind], true)
		}
	}
	for _, term := range medicationTerms {
		m.put(term, knowledge.KindMedicine, "arv_examples", medicationWeight, false)
	}

	var runes [][]rune
	for i, rule := range specialRules {
		for j, pattern := range rule.patterns {
			m.patterns[pattern] = patternRef{rule: i, order: j}
			runes = append(runes, []rune(pattern))
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(runes); err != nil {
		return nil, errors.Wrap(err, "build phrase matcher")
	}
	m.special = machine
	return m, nil
}

func (m *Matcher) put(term string, kind knowledge.Kind, key string, weight float64, override bool) {
	if term == "" {
		return
	}
	if _, exists := m.vocab[term]; exists {
		if !override {
			return
		}
	} else {
		m.terms = append(m.terms, term)
	}
	m.vocab[term] = vocabEntry{kind: kind, key: key, weight: weight, words: strings.Fields(term)}
}

// Terms returns the vocabulary in lookup order.
func (m *Matcher) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Match resolves text to the best knowledge entry. An empty Match means
// nothing in the vocabulary was close enough.
func (m *Matcher) Match(text string) Match {
	clean := Normalize(text)
	if clean == "" {
		return Match{Question: General}
	}

	if match, ok := m.matchSpecial(clean); ok {
		return match
	}

	for _, term := range m.terms {
		if term == clean {
			return m.matchTerm(term)
		}
	}

	for _, term := range m.terms {
		if len(term) > 2 && strings.Contains(clean, term) {
			return m.matchTerm(term)
		}
	}

	if containsAny(clean, arvMarkers) {
		if containsAny(clean, listingMarkers) {
			return Match{Kind: knowledge.KindMedicine, Key: "arv_examples", Term: "arv examples", Question: Examples}
		}
		return Match{Kind: knowledge.KindGlossary, Key: "art", Term: "art", Question: Definition}
	}

	if term, ok := m.bestOverlap(clean); ok {
		return m.matchTerm(term)
	}

	if term, ok := m.closest(clean); ok {
		return m.matchTerm(term)
	}

	return Match{Question: General}
}

func (m *Matcher) matchSpecial(clean string) (Match, bool) {
	hits := m.special.MultiPatternSearch([]rune(clean), false)
	if len(hits) == 0 {
		return Match{}, false
	}
	best := ""
	var bestRef patternRef
	for _, hit := range hits {
		word := string(hit.Word)
		ref, ok := m.patterns[word]
		if !ok {
			continue
		}
		if best == "" || ref.rule < bestRef.rule || (ref.rule == bestRef.rule && ref.order < bestRef.order) {
			best, bestRef = word, ref
		}
	}
	if best == "" {
		return Match{}, false
	}
	rule := specialRules[bestRef.rule]
	question := Definition
	if strings.Contains(best, "examples") {
		question = Examples
	}
	return Match{Kind: rule.kind, Key: rule.key, Term: best, Question: question}, true
}

func (m *Matcher) matchTerm(term string) Match {
	entry := m.vocab[term]
	return Match{Kind: entry.kind, Key: entry.key, Term: term, Question: General}
}

func (m *Matcher) bestOverlap(clean string) (string, bool) {
	query := make(map[string]struct{})
	for _, w := range strings.Fields(clean) {
		query[w] = struct{}{}
	}
	if len(query) == 0 {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, term := range m.terms {
		entry := m.vocab[term]
		seen := make(map[string]struct{}, len(entry.words))
		common := 0
		for _, w := range entry.words {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := query[w]; ok {
				common++
			}
		}
		score := float64(common) / float64(len(query)) * entry.weight
		if score > bestScore {
			best, bestScore = term, score
		}
	}
	return best, bestScore > overlapThreshold
}

// closest returns the vocabulary term with the highest similarity ratio
// at or above the cutoff. Ties go to the lexically greater term.
func (m *Matcher) closest(clean string) (string, bool) {
	target := splitChars(clean)
	type scored struct {
		term  string
		ratio float64
	}
	var candidates []scored
	for _, term := range m.terms {
		ratio := difflib.NewMatcher(splitChars(term), target).Ratio()
		if ratio >= fuzzyCutoff {
			candidates = append(candidates, scored{term: term, ratio: ratio})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ratio != candidates[j].ratio {
			return candidates[i].ratio > candidates[j].ratio
		}
		return candidates[i].term > candidates[j].term
	})
	return candidates[0].term, true
}

// Normalize lowercases text, turns anything outside ASCII a-z, 0-9 and
// whitespace into a space and collapses runs of spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
