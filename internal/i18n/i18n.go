// Package i18n negotiates the response language and holds the Arabic and
// English message catalog. Arabic is the portal default.
package i18n

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

type Lang string

const (
	Arabic  Lang = "ar"
	English Lang = "en"
)

var (
	supported = []language.Tag{language.Arabic, language.English}
	matcher   = language.NewMatcher(supported)
)

// FromRequest picks the response language: ?lang= wins, then Accept-Language.
func FromRequest(c *fiber.Ctx) Lang {
	if q := c.Query("lang"); q != "" {
		return Parse(q)
	}
	return Parse(c.Get(fiber.HeaderAcceptLanguage))
}

// Parse matches a language tag or an Accept-Language header against ar/en.
func Parse(s string) Lang {
	if s == "" {
		return Arabic
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return Arabic
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Arabic
	}
	if supported[idx] == language.English {
		return English
	}
	return Arabic
}

// T returns the message for key in lang. Unknown keys are returned as-is.
func T(lang Lang, key string) string {
	entry, ok := catalog[key]
	if !ok {
		return key
	}
	if lang == English {
		return entry.en
	}
	return entry.ar
}

// Tf formats the localized message with args.
func Tf(lang Lang, key string, args ...interface{}) string {
	return fmt.Sprintf(T(lang, key), args...)
}
