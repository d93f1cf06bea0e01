package knowledge

import (
	_ "embed"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Kind tells which knowledge source an entry comes from.
type Kind string

const (
	KindKB       Kind = "kb"
	KindGlossary Kind = "glossary"
	KindMedicine Kind = "medicine"
)

// Entry is one answerable topic with its text per language tag.
type Entry struct {
	Key  string            `yaml:"key" json:"key" validate:"required"`
	Kind Kind              `yaml:"kind" json:"kind" validate:"oneof=kb glossary medicine"`
	Tags []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Text map[string]string `yaml:"text" json:"text" validate:"required,dive,keys,required,endkeys,required"`
}

// Localized returns the text for lang, falling back to English.
func (e Entry) Localized(lang string) (string, bool) {
	if t, ok := e.Text[lang]; ok && t != "" {
		return t, true
	}
	t, ok := e.Text["en"]
	return t, ok && t != ""
}

// Store exposes knowledge lookup for the answer service.
type Store interface {
	List() []Entry
	Find(kind Kind, key string) (Entry, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Entry
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
func NewMemoryStore(items []Entry) *MemoryStore {
	return &MemoryStore{items: append([]Entry(nil), items...)}
}

// List returns every entry in file order.
func (s *MemoryStore) List() []Entry {
	return append([]Entry(nil), s.items...)
}

// Find looks up an entry by kind and key.
func (s *MemoryStore) Find(kind Kind, key string) (Entry, bool) {
	for _, item := range s.items {
		if item.Kind == kind && item.Key == key {
			return item, true
		}
	}
	return Entry{}, false
}

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the built-in knowledge base.
func Seed() []Entry {
	entries, err := Parse(seedYAML)
	if err != nil {
		panic(errors.Wrap(err, "embedded knowledge seed"))
	}
	return entries
}

// LoadFile reads a YAML knowledge file.
func LoadFile(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read knowledge file %s", path)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML list of entries.
func Parse(raw []byte) ([]Entry, error) {
	var doc struct {
		Entries []Entry `yaml:"entries" validate:"dive"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode knowledge")
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, errors.Wrap(err, "validate knowledge")
	}
	return doc.Entries, nil
}
