package placeholder

import "strings"

// Render replaces every {name} in text with values[name].
//
// {{ and }} render as literal braces. An empty value is valid; a name absent
// from values fails with *MissingFieldError. Nothing is returned on failure.
func Render(text string, values map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				out.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", &MalformedError{Offset: i, Reason: "unclosed '{'"}
			}
			name := text[i+1 : i+1+end]
			if err := checkName(name, i); err != nil {
				return "", err
			}
			value, ok := values[name]
			if !ok {
				return "", &MissingFieldError{Name: name}
			}
			out.WriteString(value)
			i += end + 1

		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				out.WriteByte('}')
				i++
				continue
			}
			return "", &MalformedError{Offset: i, Reason: "single '}' encountered"}

		default:
			out.WriteByte(c)
		}
	}

	return out.String(), nil
}

func checkName(name string, offset int) error {
	if name == "" {
		return &MalformedError{Offset: offset, Reason: "empty placeholder {}"}
	}
	if idx := strings.IndexByte(name, '{'); idx >= 0 {
		return &MalformedError{Offset: offset + 1 + idx, Reason: "unexpected '{' in placeholder name"}
	}
	if isDigits(name) {
		return &MalformedError{Offset: offset, Reason: "positional placeholder {" + name + "}"}
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Preview renders text for a live preview. Declared fields with no value, or
// an empty one, render as their own {name} so unfilled fields stay visible.
func Preview(text string, fields []string, values map[string]string) (string, error) {
	return Render(text, fill(fields, values, func(name string) string {
		return "{" + name + "}"
	}))
}

// Generate renders the final text. Declared fields with no value render as
// the empty string. Placeholders that were never declared still fail with
// *MissingFieldError unless values supplies them.
func Generate(text string, fields []string, values map[string]string) (string, error) {
	return Render(text, fill(fields, values, func(string) string {
		return ""
	}))
}

func fill(fields []string, values map[string]string, fallback func(string) string) map[string]string {
	data := make(map[string]string, len(values)+len(fields))
	for key, value := range values {
		data[key] = value
	}
	for _, field := range fields {
		if data[field] == "" {
			data[field] = fallback(field)
		}
	}
	return data
}
