package family

import (
	"crypto/rand"
	"math/big"
)

const (
	inviteAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength = 8
)

// NewInviteCode returns a random code of uppercase letters and digits.
func NewInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteAlphabet)))
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code), nil
}
