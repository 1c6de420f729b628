package services

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "delivered":
		return true, true
	case "false", "0", "placed":
		return false, true
	}
	return false, false
}

// parseBoolJSON accepts true/false, 0/1 and their string forms. null is not a boolean.
func parseBoolJSON(raw json.RawMessage) (bool, bool) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
		return false, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
