// Package placeholder extracts {name} placeholders from template text and
// renders templates against a value mapping.
package placeholder

import (
	"regexp"
	"strings"
)

var fieldPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Extract returns the placeholder names in text, in first-occurrence order.
// Duplicates are kept. There is no escape syntax: any {...} run counts.
func Extract(text string) []string {
	matches := fieldPattern.FindAllStringSubmatch(text, -1)
	fields := make([]string, 0, len(matches))
	for _, match := range matches {
		fields = append(fields, match[1])
	}
	return fields
}

// Unique returns fields with later duplicates removed, keeping order.
func Unique(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}

// Names returns the fields a user can fill: duplicates removed, and names
// holding a '{' dropped. Extract reports "{{USD}}" as "{USD", which renders
// as literal braces and never looks up a value.
func Names(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, field := range Unique(fields) {
		if strings.ContainsRune(field, '{') {
			continue
		}
		out = append(out, field)
	}
	return out
}

// Missing returns the fillable placeholders in text that are not declared
// in fields. A non-empty result means the stored field list is stale.
func Missing(text string, fields []string) []string {
	declared := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		declared[field] = struct{}{}
	}

	var missing []string
	for _, name := range Names(Extract(text)) {
		if _, ok := declared[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
