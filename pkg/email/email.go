package email

import (
	"strings"
	"unicode"
)

// NameParts guesses a display name from an address such as
// "aminata.diallo@example.com". Plus-address tags and digits are dropped; an
// address with a single word yields an empty last name.
func NameParts(address string) (first, last string) {
	local, _, _ := strings.Cut(address, "@")
	local, _, _ = strings.Cut(local, "+")

	words := strings.FieldsFunc(local, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return titleCase(words[0]), ""
	default:
		return titleCase(words[0]), titleCase(words[len(words)-1])
	}
}

func titleCase(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
