// Package jsonrepair recovers valid JSON from completion output that may be
// wrapped in prose or markdown fences, carry trailing commas, or be cut off
// mid-generation by a token limit. It is pure text transformation: no
// strategy depends on why the text is malformed.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpen     = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose    = regexp.MustCompile("\\s*```$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Repair returns the best-effort valid JSON string recovered from raw, or the
// cleaned text unchanged when no strategy succeeds. Callers must treat an
// unparseable return value as a parse failure and degrade.
func Repair(raw string) string {
	clean := stripFences(raw)
	if out, ok := directOrCommaStripped(clean); ok {
		return out
	}
	if out, ok := spanRepair(clean, '{', '}'); ok {
		return out
	}
	if out, ok := spanRepair(clean, '[', ']'); ok {
		return out
	}
	if strings.HasPrefix(clean, "[") {
		if out, ok := repairTruncatedArray(clean); ok {
			return out
		}
	}
	if strings.HasPrefix(clean, "{") {
		if out, ok := repairTruncatedObject(clean); ok {
			return out
		}
	}
	if out, ok := salvageObjects(clean); ok {
		return out
	}
	return clean
}

// RepairObject is the object-mode entry point: the caller expects a single
// top-level {...} value.
func RepairObject(raw string) string {
	clean := stripFences(raw)
	if out, ok := directOrCommaStripped(clean); ok {
		return out
	}
	if out, ok := spanRepair(clean, '{', '}'); ok {
		return out
	}
	if out, ok := repairTruncatedObject(clean); ok {
		return out
	}
	return clean
}

// RepairArray is the array-mode entry point: the caller expects a top-level
// [...] value and a truncated tail is repaired element-wise.
func RepairArray(raw string) string {
	clean := stripFences(raw)
	if out, ok := directOrCommaStripped(clean); ok {
		return out
	}
	if out, ok := spanRepair(clean, '[', ']'); ok {
		return out
	}
	if out, ok := repairTruncatedArray(clean); ok {
		return out
	}
	if out, ok := salvageObjects(clean); ok {
		return out
	}
	return clean
}

func stripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = fenceOpen.ReplaceAllString(clean, "")
	clean = fenceClose.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

func valid(s string) bool {
	return json.Valid([]byte(s))
}

func directOrCommaStripped(clean string) (string, bool) {
	if valid(clean) {
		return clean, true
	}
	if stripped := trailingComma.ReplaceAllString(clean, "$1"); valid(stripped) {
		return stripped, true
	}
	return "", false
}

// spanRepair extracts the first balanced open...close span (string-aware) and
// retries the parse on the trimmed span.
func spanRepair(clean string, open, close byte) (string, bool) {
	start := strings.IndexByte(clean, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(clean); i++ {
		c := clean[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				span := clean[start : i+1]
				return directOrCommaStripped(span)
			}
		}
	}
	return "", false
}

// repairTruncatedArray closes an array cut off mid-element. Object elements
// are cut at the last complete "}," boundary (or the last "}"); scalar
// elements fall back to cutting at separator commas from the end.
func repairTruncatedArray(clean string) (string, bool) {
	if i := strings.LastIndex(clean, "},"); i > 0 {
		if repaired := clean[:i+1] + "]"; valid(repaired) {
			return repaired, true
		}
	}
	if i := strings.LastIndexByte(clean, '}'); i > 0 {
		if repaired := clean[:i+1] + "]"; valid(repaired) {
			return repaired, true
		}
	}
	for i := len(clean) - 1; i > 0; i-- {
		if clean[i] != ',' {
			continue
		}
		if repaired := clean[:i] + "]"; valid(repaired) {
			return repaired, true
		}
	}
	return "", false
}

// repairTruncatedObject scans backward for a '}' that yields a syntactically
// valid document, trying progressively earlier candidates.
func repairTruncatedObject(clean string) (string, bool) {
	for i := len(clean) - 1; i > 0; i-- {
		if clean[i] != '}' {
			continue
		}
		if candidate := clean[:i+1]; valid(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// salvageObjects is the last resort: collect every top-level {...} span that
// independently parses and return them wrapped in an array, so partial
// results survive even when the rest of the payload is garbage.
func salvageObjects(clean string) (string, bool) {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(clean); i++ {
		c := clean[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case c == '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					if obj := clean[start : i+1]; valid(obj) {
						objects = append(objects, obj)
					}
					start = -1
				}
			}
		}
	}
	if len(objects) == 0 {
		return "", false
	}
	return "[" + strings.Join(objects, ",") + "]", true
}
