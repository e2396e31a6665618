// Package invitecode generates and validates group invite codes.
//
// A code is eight symbols from [A-Z0-9] split as XXXX-XXXX. Input is
// case-insensitive and normalized to upper case before lookup.
package invitecode

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var pattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate returns a fresh random code.
func Generate() (string, error) {
	var b strings.Builder
	b.Grow(9)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize trims and upper-cases user input.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code (already normalized) has the XXXX-XXXX form.
func Valid(code string) bool {
	return pattern.MatchString(code)
}
