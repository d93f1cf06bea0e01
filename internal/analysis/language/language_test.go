package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasSesothoMarkers(t *testing.T) {
	assert.True(t, HasSesothoMarkers("Lumela ntate"))
	assert.True(t, HasSesothoMarkers("HIV ke eng?"))
	assert.False(t, HasSesothoMarkers("What is HIV?"))
	assert.False(t, HasSesothoMarkers(""))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, English, Resolve("What is HIV?", "en"))
	assert.Equal(t, Sesotho, Resolve("HIV ke eng?", "en"))
	assert.Equal(t, Sesotho, Resolve("What is HIV?", "st"))
	assert.Equal(t, English, Resolve("What is HIV?", "fr"))
	assert.Equal(t, English, Resolve("What is HIV?", ""))
	assert.Equal(t, Sesotho, Resolve("lefu", " ST "))
}

func TestResolveSwitchesOnAnyMarkerWord(t *testing.T) {
	// English words that double as markers switch the answer language too.
	for _, text := range []string{
		"give me examples of arv",
		"tell me about hiv",
		"can you help me",
		"what is art le hiv",
	} {
		assert.Equal(t, Sesotho, Resolve(text, "en"), text)
	}
}

func TestHintDoesNotAffectResolve(t *testing.T) {
	text := "The clinic opens early in the morning and the nurses are very friendly to me"
	assert.Equal(t, "en", Hint(text))
	assert.Equal(t, Sesotho, Resolve(text, "en"))
}
