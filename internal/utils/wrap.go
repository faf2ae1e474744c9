package utils

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// ParagraphWidth is the width advisories and prompts are wrapped to.
const ParagraphWidth = 60

// WrapParagraph collapses runs of whitespace in text and wraps it to width.
func WrapParagraph(text string, width uint) string {
	return wordwrap.WrapString(strings.Join(strings.Fields(text), " "), width)
}
