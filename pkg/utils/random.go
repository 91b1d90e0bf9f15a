package utils

import (
	"crypto/rand"
	"math/big"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinCode generates a random uppercase-alphanumeric code of length n.
func GenerateJoinCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			// crypto rand failing is effectively fatal; callers retry on empty
			return ""
		}
		b[i] = codeCharset[num.Int64()]
	}
	return string(b)
}
