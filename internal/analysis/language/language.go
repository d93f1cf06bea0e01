package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/zhouzirui/healthchat/internal/analysis/topic"
)

const (
	English = "en"
	Sesotho = "st"
)

var sesothoMarkers = map[string]struct{}{
	"ke": {}, "ha": {}, "hona": {}, "lefu": {}, "joang": {}, "tse": {}, "tsa": {}, "mali": {}, "ea": {},
	"eng": {}, "ho": {}, "le": {}, "ka": {}, "lumela": {}, "ntate": {}, "me": {}, "ena": {}, "keng": {},
}

// Supported reports whether lang is one of the answer languages.
func Supported(lang string) bool {
	return lang == English || lang == Sesotho
}

// HasSesothoMarkers reports whether any word of text is a common Sesotho word.
func HasSesothoMarkers(text string) bool {
	for _, w := range strings.Fields(topic.Normalize(text)) {
		if _, ok := sesothoMarkers[w]; ok {
			return true
		}
	}
	return false
}

// Resolve returns the language to answer in. Unsupported requests become
// English; English requests switch to Sesotho when the text carries any
// Sesotho marker word.
func Resolve(text, requested string) string {
	lang := strings.ToLower(strings.TrimSpace(requested))
	if !Supported(lang) {
		lang = English
	}
	if lang == English && HasSesothoMarkers(text) {
		return Sesotho
	}
	return lang
}

// Hint returns the ISO 639-1 code whatlanggo detects, or "" if unknown. It is
// logged alongside the resolved language and never changes it.
func Hint(text string) string {
	return whatlanggo.Detect(text).Lang.Iso6391()
}
