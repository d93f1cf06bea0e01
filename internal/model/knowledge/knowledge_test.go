package knowledge_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

func TestSeedIsValid(t *testing.T) {
	entries := knowledge.Seed()
	require.NotEmpty(t, entries)

	store := knowledge.NewMemoryStore(entries)
	art, ok := store.Find(knowledge.KindGlossary, "art")
	require.True(t, ok)
	text, ok := art.Localized("st")
	assert.True(t, ok, "falls back to english")
	assert.Contains(t, text, "antiretroviral")

	_, ok = store.Find(knowledge.KindMedicine, "art")
	assert.False(t, ok)
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"bad kind":   "entries:\n  - key: x\n    kind: rumor\n    text: {en: y}\n",
		"no key":     "entries:\n  - kind: kb\n    text: {en: y}\n",
		"no text":    "entries:\n  - key: x\n    kind: kb\n",
		"empty text": "entries:\n  - key: x\n    kind: kb\n    text: {en: \"\"}\n",
		"not yaml":   "entries: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := knowledge.Parse([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - key: malaria\n    kind: kb\n    tags: [malaria]\n    text: {en: Sleep under a net., st: Robala ka tlasa nete.}\n"), 0o600))

	entries, err := knowledge.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	text, _ := entries[0].Localized("st")
	assert.Equal(t, "Robala ka tlasa nete.", text)

	_, err = knowledge.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
