package iiif

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// oneOrMany accepts either a single JSON value or a list of them.
//
// Presentation 2 documents use `"service": {...}` where Presentation 3 uses
// `"service": [{...}]`, and `body` may be a single resource or a choice list.
type oneOrMany []json.RawMessage

func (o *oneOrMany) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*o = nil
		return nil
	case data[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*o = list
		return nil
	}
	*o = oneOrMany{json.RawMessage(data)}
	return nil
}

func (o oneOrMany) first() json.RawMessage {
	if len(o) == 0 {
		return nil
	}
	return o[0]
}

// looseList accepts a JSON list. Any other value reads as if the key were
// absent, so that one badly shaped field does not spoil the document.
type looseList []json.RawMessage

func (l *looseList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	list := []json.RawMessage{}
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// decodeObject decodes raw into v when raw is a JSON object.
func decodeObject(raw json.RawMessage, v interface{}) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// dimension is a lenient integer: numbers, floats and numeric strings are
// accepted, anything else reads as zero.
type dimension int

func (d *dimension) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		*d = dimension(f)
	} else {
		*d = 0
	}
	return nil
}

// reference is the subset shared by resources, services and links.
type reference struct {
	ID       string    `json:"id"`
	LegacyID string    `json:"@id"`
	Service  oneOrMany `json:"service"`
}

func (r reference) id() string {
	if r.ID != "" {
		return r.ID
	}
	return r.LegacyID
}

// decodeReference reads an object reference. A bare JSON string is taken as
// the reference's id.
func decodeReference(raw json.RawMessage) (reference, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return reference{}, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return reference{}, false
		}
		return reference{ID: s}, true
	case '{':
		var ref reference
		if err := json.Unmarshal(raw, &ref); err != nil {
			return reference{}, false
		}
		return ref, true
	}
	return reference{}, false
}

// firstString extracts a display string from a value that may be a plain
// string, an `{"@value": ...}` object, a language map `{"en": ["..."]}` or a
// list of any of those. An `@value` key wins over language entries; otherwise
// the first language (in document order) with a string value is used.
func firstString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return firstString(list[0])
		}
	case '{':
		return firstLangString(raw)
	}
	return ""
}

func firstLangString(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ""
	}

	candidate := ""
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return candidate
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return candidate
		}

		if key == "@value" {
			var s string
			if err := json.Unmarshal(value, &s); err == nil {
				return s
			}
			continue
		}

		if candidate != "" {
			continue
		}
		var values []json.RawMessage
		if err := json.Unmarshal(value, &values); err == nil && len(values) > 0 {
			var s string
			if err := json.Unmarshal(values[0], &s); err == nil {
				candidate = s
			}
		}
	}
	return candidate
}
