package discovery

import (
	"regexp"
	"strings"
)

var invalidFieldCharacters = regexp.MustCompile(`[^\w.]`)

// Query language symbols that must be escaped to be matched literally.
var controlCharacterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`|`, `\|`,
	`:`, `\:`,
	`!`, `\!`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`^`, `\^`,
	`~`, `\~`,
	`*`, `\*`,
	`(`, `\(`,
	`)`, `\)`,
	`[`, `\[`,
	`]`, `\]`,
	`"`, `\"`,
)

// CleanFieldName replaces every character that is not allowed in a field
// name (anything other than letters, digits, '_' and '.') with '_'.
func CleanFieldName(fieldName string) string {
	return invalidFieldCharacters.ReplaceAllString(fieldName, "_")
}

// EscapeControlCharacters prefixes query language operators in value with a
// backslash so the value is matched literally in a filter or query.
func EscapeControlCharacters(value string) string {
	return controlCharacterEscaper.Replace(value)
}
