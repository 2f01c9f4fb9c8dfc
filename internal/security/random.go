package security

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

var ten = big.NewInt(10)

// NewNumericCode returns a uniformly distributed numeric string of the
// given length. Codes are short-lived login passcodes, but the source is
// crypto/rand so they are not guessable from prior outputs.
func NewNumericCode(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// NewRandomString returns n random bytes in URL-safe base64, used for
// opaque identifiers such as session token IDs.
func NewRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
