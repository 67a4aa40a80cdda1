// README: One-time-password generation and comparison.
package account

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// OTPLength is the fixed length of every generated code.
const OTPLength = 6

// GenerateOTP returns a uniformly random numeric code.
func GenerateOTP() string {
	var b strings.Builder
	for i := 0; i < OTPLength; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}

// MatchOTP compares stored and supplied codes after trimming
// whitespace on both sides. An empty stored code never matches.
func MatchOTP(stored, supplied string) bool {
	s := strings.TrimSpace(stored)
	return s != "" && s == strings.TrimSpace(supplied)
}
