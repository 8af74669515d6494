package synth

import (
	"unicode/utf8"

	"golang.org/x/text/language"

	"voicebot/internal/domain"
)

// Catalog holds the voices available per language and validates synthesis
// requests before they reach the queue.
type Catalog struct {
	voices        map[string][]string
	defaults      map[string]string
	langs         []string
	matcher       language.Matcher
	maxTextLength int
}

// NewCatalog builds the default catalog. The voice inventory mirrors the
// deployed Silero models: one set per language with a designated default.
// defaultLang is the language used when detection fails; an unknown value
// falls back to "ru", the inventory's primary language.
func NewCatalog(defaultLang string, maxTextLength int) *Catalog {
	c := &Catalog{
		voices: map[string][]string{
			"ru": {"aidar", "baya", "kseniya", "xenia", "eugene", "random"},
			"en": {"en_0", "en_1"},
		},
		defaults: map[string]string{
			"ru": "baya",
			"en": "en_0",
		},
		maxTextLength: maxTextLength,
	}
	if _, ok := c.voices[defaultLang]; !ok {
		defaultLang = "ru"
	}
	c.langs = append(c.langs, defaultLang)
	for _, lang := range []string{"ru", "en"} {
		if lang != defaultLang {
			c.langs = append(c.langs, lang)
		}
	}
	tags := make([]language.Tag, 0, len(c.langs))
	for _, lang := range c.langs {
		tags = append(tags, language.Make(lang))
	}
	c.matcher = language.NewMatcher(tags)
	return c
}

// Languages lists supported language codes in stable order.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.langs...)
}

// Voices lists the voice identifiers for a language.
func (c *Catalog) Voices(lang string) []string {
	return append([]string(nil), c.voices[lang]...)
}

// DefaultVoice returns the default voice for a language, falling back to the
// first supported language when lang is unknown.
func (c *Catalog) DefaultVoice(lang string) string {
	if v, ok := c.defaults[lang]; ok {
		return v
	}
	return c.defaults[c.langs[0]]
}

// MatchLanguage picks the best supported language for an Accept-Language
// header value. An empty, unparsable or unsupported header yields the
// default language rather than the matcher's arbitrary pick.
func (c *Catalog) MatchLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.langs[0]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.langs[0]
	}
	_, index, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.langs[0]
	}
	return c.langs[index]
}

// Resolve validates the requested voice and fills in the language default for
// an empty voiceID. Unknown voices return domain.ErrUnknownVoice.
func (c *Catalog) Resolve(lang, voiceID string) (string, error) {
	if voiceID == "" {
		return c.DefaultVoice(lang), nil
	}
	for _, voices := range c.voices {
		for _, v := range voices {
			if v == voiceID {
				return voiceID, nil
			}
		}
	}
	return "", domain.ErrUnknownVoice
}

// ValidateText enforces the configured maximum text length in runes.
func (c *Catalog) ValidateText(text string) error {
	if c.maxTextLength > 0 && utf8.RuneCountInString(text) > c.maxTextLength {
		return domain.ErrTextTooLong
	}
	return nil
}
