package services

import "strings"

// FallbackContactNumber is substituted when a stored contact number is
// unusable. It matches the schema default so old and new rows agree.
const FallbackContactNumber = "+919109231207"

// NormalizeContactNumber papers over a storage bug in the previous
// deployment, where some rows persisted a serialized single-element
// tuple such as "('+911234567890',)" or "('',)" instead of a plain
// string. The value is coerced to its contained element; anything
// unusable after that collapses to the fallback number.
//
// TODO: migrate the affected rows and drop this shim.
func NormalizeContactNumber(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, ",")
		s = strings.TrimSpace(s)
		if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
			s = s[1 : len(s)-1]
		}
		s = strings.TrimSpace(s)
	}

	if s == "" || s == "('',)" || s == "None" {
		return FallbackContactNumber
	}
	return s
}
