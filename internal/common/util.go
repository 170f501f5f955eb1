package common

import "strings"

// NormalizeLogin canonicalises a username or e-mail used as a lookup key.
func NormalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for secrets read from a terminal once they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
