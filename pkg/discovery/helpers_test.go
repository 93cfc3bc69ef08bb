package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/watson-go/pkg/discovery"
)

func TestCleanFieldName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"field":               "field",
		"enriched_text.label": "enriched_text.label",
		"my field-name":       "my_field_name",
		"price($)":            "price___",
		"":                    "",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, discovery.CleanFieldName(input), input)
	}
}

func TestEscapeControlCharacters(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain text":      "plain text",
		"a:b":             `a\:b`,
		"x,y|z":           `x\,y\|z`,
		`say "hi"!`:       `say \"hi\"\!`,
		`C:\path`:         `C\:\\path`,
		"(a>=1)~2^3*[4]<": `\(a\>\=1\)\~2\^3\*\[4\]\<`,
	}

	for input, expected := range tests {
		assert.Equal(t, expected, discovery.EscapeControlCharacters(input), input)
	}
}
