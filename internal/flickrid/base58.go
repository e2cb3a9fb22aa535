package flickrid

import (
	"errors"
	"math"
	"strconv"
)

// Flickr short links use their own base58 alphabet, which drops the easily
// confused characters 0, O, I, and l.
const base58Alphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

var base58Index = func() map[rune]uint64 {
	idx := make(map[rune]uint64, len(base58Alphabet))
	for i, r := range base58Alphabet {
		idx[r] = uint64(i)
	}
	return idx
}()

var errBadBase58 = errors.New("invalid base58 code")

// decodeBase58 converts a flic.kr short code to its decimal photo ID.
func decodeBase58(code string) (string, error) {
	if code == "" {
		return "", errBadBase58
	}
	var n uint64
	for _, r := range code {
		digit, ok := base58Index[r]
		if !ok {
			return "", errBadBase58
		}
		if n > (math.MaxUint64-digit)/58 {
			return "", errBadBase58
		}
		n = n*58 + digit
	}
	return strconv.FormatUint(n, 10), nil
}
