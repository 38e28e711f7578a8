// Package i18n holds the few user-visible strings the service produces.
package i18n

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.French,
	language.German,
	language.Spanish,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var droppedPin = map[language.Tag]string{
	language.English: "dropped pin",
	language.French:  "repère placé",
	language.German:  "gesetzte markierung",
	language.Spanish: "marcador colocado",
	language.Russian: "метка",
}

// Localizer resolves labels for one language.
type Localizer struct {
	tag language.Tag
}

// New picks the closest supported language for lang (a BCP 47 tag such as
// "fr-CA"); unknown or malformed tags resolve to English.
func New(lang string) *Localizer {
	tag, err := language.Parse(lang)
	if err != nil {
		return &Localizer{tag: supported[0]}
	}
	_, idx, _ := matcher.Match(tag)
	return &Localizer{tag: supported[idx]}
}

func (l *Localizer) Tag() language.Tag { return l.tag }

// DroppedPin is the label for an unnamed point.
func (l *Localizer) DroppedPin() string {
	return droppedPin[l.tag]
}

// TitleCase capitalizes the first letter of each word using the rules of the
// localizer language. The rest of each word is left as is.
func (l *Localizer) TitleCase(s string) string {
	// a Caser is stateful and must not be shared
	return cases.Title(l.tag, cases.NoLower).String(s)
}
