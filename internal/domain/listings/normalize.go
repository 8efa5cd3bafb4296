package listings

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeStringList accepts the shapes property data arrives in for list
// fields such as amenities and photos: a JSON array, a JSON string holding an
// encoded array, or a plain comma separated string. Blank entries are dropped.
func NormalizeStringList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list)
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	return ParseStringList(encoded)
}

// ParseStringList handles the string forms of NormalizeStringList.
func ParseStringList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") {
		var list []string
		if err := json.Unmarshal([]byte(value), &list); err == nil {
			return cleanList(list)
		}
	}
	return cleanList(strings.Split(value, ","))
}

// NormalizeStrings trims entries and drops blanks.
func NormalizeStrings(values []string) []string {
	return cleanList(values)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
