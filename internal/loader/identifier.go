package loader

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/glyph/internal/types"
)

// Identifier returns a Go-style exported identifier for a definition, e.g.
// "account-book" of type "outline" becomes "AccountBookOutline".
func Identifier(def *types.IconDefinition) string {
	return identifierOf(def.Name + "-" + def.Type)
}

func identifierOf(s string) string {
	title := cases.Title(language.English)

	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var sb strings.Builder
	for _, word := range words {
		sb.WriteString(title.String(word))
	}

	id := sb.String()
	if id == "" {
		return "Icon"
	}
	if unicode.IsDigit(rune(id[0])) {
		id = "Icon" + id
	}
	return id
}
