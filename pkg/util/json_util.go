package util

import (
	"regexp"
	"strings"
)

const (
	reasoningStartMarker = "<think>"
	reasoningEndMarker   = "</think>"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// StripReasoningTrace removes the "thinking" preamble some reasoning models
// prepend to their answer. A terminated trace is removed up to and including
// the end marker; an unterminated trace is removed up to and including the
// start marker so the tail stays available for parsing.
func StripReasoningTrace(text string) string {
	start := strings.Index(text, reasoningStartMarker)
	if start == -1 {
		return text
	}

	end := strings.Index(text, reasoningEndMarker)
	if end != -1 && end >= start {
		return text[end+len(reasoningEndMarker):]
	}
	return text[start+len(reasoningStartMarker):]
}

// ExtractJsonFromText tries to find the largest JSON object/array in the text
func ExtractJsonFromText(text string) string {
	// 1. Try to find markdown code block first
	matches := codeBlockRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 2. Fallback: Find first '{' or '[' and last '}' or ']'
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")

	start := startObj
	if start == -1 || (startArr != -1 && startArr < start) {
		start = startArr
	}
	if start == -1 {
		return text // No JSON found, return raw text
	}

	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	end := endObj
	if endArr > end {
		end = endArr
	}

	if end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
