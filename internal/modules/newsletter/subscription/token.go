package subscription

import (
	"crypto/rand"
	"math/big"
)

const (
	tokenLength   = 25
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newSubscriptionToken mints a confirmation token: tokenLength characters
// drawn uniformly from the alphanumeric alphabet.
func newSubscriptionToken() (string, error) {
	out := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tokenAlphabet[n.Int64()]
	}
	return string(out), nil
}

// isWellFormedToken reports whether a candidate token could have been issued
// by newSubscriptionToken. Anything else is rejected before touching the
// database.
func isWellFormedToken(token string) bool {
	if len(token) != tokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum {
			return false
		}
	}
	return true
}
