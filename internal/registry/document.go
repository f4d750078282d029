package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Document is the persistence form of a registry: an ordered list of
// platforms, each holding an ordered list of message types. It encodes to
//
//	{ "<platform>": { "<type>": { "template": "...", "fields": ["..."] } } }
//
// keeping key order in both directions.
type Document []PlatformEntry

// PlatformEntry is one platform of a Document.
type PlatformEntry struct {
	Name         string
	MessageTypes []MessageTypeEntry
}

// MessageTypeEntry is one message type of a platform.
type MessageTypeEntry struct {
	Name     string
	Template string
	Fields   []string
}

// ErrNotObject is returned when the top level of a document is not a JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// MarshalJSON encodes the document as nested objects in entry order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, entry.Name); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, mt := range entry.MessageTypes {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, mt.Name); err != nil {
				return nil, err
			}
			buf.WriteString(`:{"template":`)
			if err := writeString(&buf, mt.Template); err != nil {
				return nil, err
			}
			buf.WriteString(`,"fields":[`)
			for k, field := range mt.Fields {
				if k > 0 {
					buf.WriteByte(',')
				}
				if err := writeString(&buf, field); err != nil {
					return nil, err
				}
			}
			buf.WriteString("]}")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent encodes the document the way it is written to disk: four
// space indentation and a trailing newline.
func (d Document) MarshalIndent() ([]byte, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes a document without schema validation. Missing keys
// become zero values and values of the wrong shape are skipped, so a
// damaged entry degrades to an empty one instead of failing the whole load.
// Only a top level that is not an object is rejected.
func (d *Document) UnmarshalJSON(data []byte) error {
	var doc Document
	index := make(map[string]int)

	err := decodeObject(data, func(name string, raw json.RawMessage) error {
		entry := PlatformEntry{Name: name, MessageTypes: decodeMessageTypes(raw)}
		if i, ok := index[name]; ok {
			doc[i] = entry
			return nil
		}
		index[name] = len(doc)
		doc = append(doc, entry)
		return nil
	})
	if err != nil {
		return err
	}

	*d = doc
	return nil
}

func decodeMessageTypes(raw json.RawMessage) []MessageTypeEntry {
	var types []MessageTypeEntry
	index := make(map[string]int)

	_ = decodeObject(raw, func(name string, value json.RawMessage) error {
		entry := decodeRecord(name, value)
		if i, ok := index[name]; ok {
			types[i] = entry
			return nil
		}
		index[name] = len(types)
		types = append(types, entry)
		return nil
	})
	return types
}

func decodeRecord(name string, raw json.RawMessage) MessageTypeEntry {
	entry := MessageTypeEntry{Name: name, Fields: []string{}}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return entry
	}

	if text, ok := record["template"]; ok {
		_ = json.Unmarshal(text, &entry.Template)
	}
	if fields, ok := record["fields"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(fields, &items); err == nil {
			for _, item := range items {
				var field string
				if err := json.Unmarshal(item, &field); err == nil {
					entry.Fields = append(entry.Fields, field)
				}
			}
		}
	}
	return entry
}

// decodeObject walks the members of a JSON object in source order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read value for %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read document end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after document")
	}
	return nil
}
