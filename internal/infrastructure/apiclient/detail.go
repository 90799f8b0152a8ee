package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var errNoDetail = errors.New("no detail")

// detailKeys are the fields the backend uses for a single error message, in
// order of preference.
var detailKeys = []string{"detail", "message", "error", "non_field_errors"}

// extractDetail pulls a display message out of an error body. Field errors
// ({"email": ["ya existe"]}) are flattened to "email: ya existe".
func extractDetail(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", err
	}

	for _, k := range detailKeys {
		if raw, ok := fields[k]; ok {
			if msg := flatten(raw); msg != "" {
				return msg, nil
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if msg := flatten(fields[k]); msg != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
		}
	}
	if len(parts) == 0 {
		return "", errNoDetail
	}
	return strings.Join(parts, "; "), nil
}

// flatten renders a string or a list of strings; anything else is ignored.
func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, " ")
	}
	return ""
}
