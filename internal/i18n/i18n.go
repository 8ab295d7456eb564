// Package i18n holds the UI message catalog for the supported languages.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fa"
	ut "github.com/go-playground/universal-translator"
)

const (
	English = "en"
	Persian = "fa"
)

// Languages lists the supported language codes in display order.
var Languages = []string{English, Persian}

// Catalog owns one translator per language. Validation messages are
// registered on the same translators by the validate package.
type Catalog struct {
	uni *ut.UniversalTranslator
}

func New() (*Catalog, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, fa.New())

	for lang, msgs := range messages {
		trans, ok := uni.GetTranslator(lang)
		if !ok {
			return nil, fmt.Errorf("missing translator for %q", lang)
		}
		for key, text := range msgs {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("error adding %s message %q: %w", lang, key, err)
			}
		}
	}
	return &Catalog{uni: uni}, nil
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// Translator returns the translator for lang, falling back to English.
func (c *Catalog) Translator(lang string) ut.Translator {
	if trans, ok := c.uni.GetTranslator(lang); ok && Supported(lang) {
		return trans
	}
	trans, _ := c.uni.GetTranslator(English)
	return trans
}

// Localizer is what templates see as .I18n.
type Localizer struct {
	Lang  string
	trans ut.Translator
}

func (c *Catalog) Localizer(lang string) *Localizer {
	if !Supported(lang) {
		lang = English
	}
	return &Localizer{Lang: lang, trans: c.Translator(lang)}
}

// Get returns the message for key with {0}-style params substituted.
// Unknown keys come back as the English text, then as the key itself.
func (l *Localizer) Get(key string, params ...string) string {
	if s, err := l.trans.T(key, params...); err == nil {
		return s
	}
	if s, ok := messages[English][key]; ok {
		for i, p := range params {
			s = strings.ReplaceAll(s, fmt.Sprintf("{%d}", i), p)
		}
		return s
	}
	return key
}

// Dir is the text direction for the html dir attribute.
func (l *Localizer) Dir() string {
	if l.Lang == Persian {
		return "rtl"
	}
	return "ltr"
}

type langKey struct{}

// WithLanguage stores the request language in ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LanguageFrom returns the request language, English by default.
func LanguageFrom(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && Supported(lang) {
		return lang
	}
	return English
}
