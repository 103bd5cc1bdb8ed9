// Package tokenizer turns raw field text into the token streams the positional index stores.
package tokenizer

import (
	"regexp"
	"strings"

	"github.com/gcbaptista/go-span-search/index"
)

var (
	// separators splits on anything that is not a letter or digit.
	separators = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	// "HTTPRequest" -> "HTTP Request"
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	// "theOffice" -> "the Office", "myAPI" -> "my API"
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Tokenize splits text into lowercase alphanumeric tokens.
// Camel and Pascal case words are split at their case boundaries.
// The result is never nil.
func Tokenize(text string) []string {
	text = acronymBoundary.ReplaceAllString(text, "$1 $2")
	text = camelBoundary.ReplaceAllString(text, "$1 $2")

	tokens := make([]string, 0)
	for _, s := range separators.Split(strings.ToLower(text), -1) {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// FieldValues tokenizes each value of a multi-valued field separately, so the
// index can insert its position increment gap between consecutive values.
// Values that yield no tokens still produce an entry and therefore still
// advance the position by the gap.
func FieldValues(field string, texts []string) []index.FieldValue {
	values := make([]index.FieldValue, len(texts))
	for i, text := range texts {
		values[i] = index.FieldValue{Field: field, Tokens: Tokenize(text)}
	}
	return values
}
