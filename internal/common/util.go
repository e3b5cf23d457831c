package common

import "strings"

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for passwords read from the terminal.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// EmailLocalPart returns the part of an email address before '@', or the whole
// string when there is no '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
