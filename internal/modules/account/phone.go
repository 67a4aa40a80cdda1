// README: Phone normalization to a single country-code prefix.
package account

import (
	"errors"
	"strings"
)

var ErrBadPhone = errors.New("invalid phone number")

// NormalizePhone strips separators and guarantees the number carries
// the country prefix exactly once. Re-normalizing an already
// normalized number is a no-op.
func NormalizePhone(raw, prefix string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", ErrBadPhone
	}

	if strings.HasPrefix(cleaned, prefix) {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	} else if bare := strings.TrimPrefix(prefix, "+"); strings.HasPrefix(cleaned, bare) && len(cleaned) > 10 {
		// "919876543210" carries the prefix without the plus sign.
		cleaned = strings.TrimPrefix(cleaned, bare)
	}
	cleaned = strings.TrimPrefix(cleaned, "0")

	if len(cleaned) < 7 {
		return "", ErrBadPhone
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrBadPhone
		}
	}
	return prefix + cleaned, nil
}
