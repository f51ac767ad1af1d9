package pkg

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength is the length of a session code unless configured otherwise.
const DefaultCodeLength = 6

// GenerateCode returns a random human-typeable code drawn uniformly from
// uppercase letters and digits. Uniqueness is the caller's problem: the
// generator has no memory, so codes must be checked against live sessions.
func GenerateCode(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}

	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}

	return string(code)
}
