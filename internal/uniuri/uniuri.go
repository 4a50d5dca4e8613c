// Package uniuri generates cryptographically secure random strings. The
// portal uses it for the enrolment keys handed to self-enrolling students.
package uniuri

import "crypto/rand"

// StdLen is the default key length, giving roughly 95 bits of entropy over
// the standard alphabet.
const StdLen = 16

// stdChars is the alphanumeric alphabet keys are drawn from. Keys are typed
// by hand, so the set stays free of lookalike-prone punctuation.
var stdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a random string of the default length.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a random string of the given length drawn from the standard
// alphabet. Bytes outside the unbiased range are rejected and redrawn, so
// every character is equally likely.
func NewLen(length int) string {
	if length <= 0 {
		return ""
	}

	clen := len(stdChars)
	maxRb := 255 - (256 % clen)

	out := make([]byte, length)
	buf := make([]byte, length+length/4)

	i := 0
	for {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) > maxRb {
				// Rejected to avoid modulo bias.
				continue
			}
			out[i] = stdChars[int(rb)%clen]
			i++
			if i == length {
				return string(out)
			}
		}
	}
}
