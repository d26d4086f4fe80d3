package service

import (
	"crypto/rand"
	"math/big"
)

// ConfirmationCodeLength is the length of every generated confirmation code.
const ConfirmationCodeLength = 10

const confirmationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CodeGenerator produces confirmation codes.
type CodeGenerator func() (string, error)

// NewConfirmationCode returns a ConfirmationCodeLength-character code drawn
// uniformly from digits and ASCII letters.  Codes are not checked against
// existing bookings.
func NewConfirmationCode() (string, error) {
	return randomCode(ConfirmationCodeLength)
}

func randomCode(n int) (string, error) {
	max := big.NewInt(int64(len(confirmationAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = confirmationAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
