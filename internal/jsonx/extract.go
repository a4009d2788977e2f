// Package jsonx extracts JSON objects from free-form LLM reply text.
//
// Model replies wrap their JSON in prose or markdown fences often enough
// that every AI tier needs the same salvage step: find the first balanced
// {...} object and parse that. Keeping it here makes "the model produced
// unparsable text" one code path instead of three.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject reports that the text contains no balanced JSON object.
var ErrNoObject = errors.New("no JSON object found in text")

// Extract returns the first balanced {...} object in text. The scan is
// string-aware: braces inside JSON string literals (and their escapes) do
// not count toward nesting depth.
func Extract(text string) (json.RawMessage, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, ErrNoObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return json.RawMessage(text[start : i+1]), nil
			}
		}
	}

	return nil, ErrNoObject
}

// Decode extracts the first balanced object from text and unmarshals it
// into v.
func Decode(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse extracted object: %w", err)
	}
	return nil
}
