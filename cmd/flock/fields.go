package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// splitField splits "key=value" into (key, value, true).
// Returns ("", "", false) if there is no '=' or key is empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// rawOrString returns a json.RawMessage if v looks like a JSON literal
// (array, quoted string, boolean, null, or number). Otherwise it returns v
// as a plain string so json.Marshal will quote it.
func rawOrString(v string) any {
	if v == "" {
		return v
	}
	switch {
	case v[0] == '[' || v[0] == '"' || v[0] == '{':
		if json.Valid([]byte(v)) {
			return json.RawMessage(v)
		}
	case v == "true" || v == "false" || v == "null":
		return json.RawMessage(v)
	case v[0] == '-' || unicode.IsDigit(rune(v[0])):
		// Leading zeros are invalid JSON, so phone numbers stay strings.
		if json.Valid([]byte(v)) {
			return json.RawMessage(v)
		}
	}
	return v
}

// parseFields converts repeated --field key=value flags into a JSON object.
func parseFields(pairs []string) (json.RawMessage, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitField(p)
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected key=value", p)
		}
		m[k] = rawOrString(v)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return b, nil
}
