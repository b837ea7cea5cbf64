package subscription

import (
	"errors"
	"strings"

	"github.com/rivo/uniseg"
)

// maxNameGraphemes caps subscriber names at 256 user-perceived characters,
// counted as grapheme clusters rather than bytes or runes.
const maxNameGraphemes = 256

const forbiddenNameChars = `/()"<>\{}`

var (
	errNameEmpty     = errors.New("name cannot be empty")
	errNameTooLong   = errors.New("name is too long")
	errNameForbidden = errors.New("name contains forbidden characters")

	errEmailInvalid = errors.New("email is not valid")
)

// ValidateName checks a subscriber name. The raw value is stored as
// submitted; trimming applies only to the emptiness check.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errNameEmpty
	}
	if uniseg.GraphemeClusterCount(name) > maxNameGraphemes {
		return errNameTooLong
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return errNameForbidden
	}
	return nil
}

// ValidateEmail checks the local@domain shape: a non-empty local part, a
// domain with at least one dot, and no surrounding whitespace. Issue
// dispatch reuses it to weed out unusable stored addresses.
func ValidateEmail(email string) error {
	if email == "" || email != strings.TrimSpace(email) {
		return errEmailInvalid
	}
	at := strings.LastIndex(email, "@")
	if at < 1 {
		return errEmailInvalid
	}
	domain := email[at+1:]
	if domain == "" || !strings.Contains(domain, ".") {
		return errEmailInvalid
	}
	return nil
}
