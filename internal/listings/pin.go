package listings

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"

	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
)

const (
	pinMinDigits = 4
	pinMaxDigits = 6

	// Guards against a pathological RNG; in practice one or two draws suffice.
	pinMaxAttempts = 32
)

// GeneratePin returns a random collection pin of 4 to 6 digits. Sequential
// runs (1234, 9876) and single-digit repeats are rejected so pins stay hard
// to guess from a glance at someone else's code.
func GeneratePin() (string, error) {
	lengthSpan := int64(pinMaxDigits - pinMinDigits + 1)
	for attempt := 0; attempt < pinMaxAttempts; attempt++ {
		span, err := rand.Int(rand.Reader, big.NewInt(lengthSpan))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pin length")
		}
		length := pinMinDigits + int(span.Int64())

		digits := make([]byte, length)
		for i := range digits {
			d, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pin digit")
			}
			digits[i] = byte('0' + d.Int64())
		}

		pin := string(digits)
		if !isGuessablePin(pin) {
			return pin, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "pin generation exhausted attempts")
}

// VerifyPin compares a supplied pin against the stored one in constant time.
func VerifyPin(expected, supplied string) bool {
	if len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

func isGuessablePin(pin string) bool {
	ascending, descending, repeated := true, true, true
	for i := 1; i < len(pin); i++ {
		diff := int(pin[i]) - int(pin[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
		if diff != 0 {
			repeated = false
		}
	}
	return ascending || descending || repeated
}
