package profile

import (
	"fmt"
	"strings"
)

// MaxNameLength is the longest accepted profile name.
const MaxNameLength = 64

// DefaultName is the profile created by init and ensure-default.
var DefaultName = MustName("default")

// Name is a validated, lowercase profile name. Equal names map to the same directory.
type Name string

func (n Name) String() string { return string(n) }

// InvalidNameReason classifies a rejected profile name.
type InvalidNameReason int

const (
	ReasonEmpty InvalidNameReason = iota
	ReasonTooLong
	ReasonEdgeHyphen
	ReasonConsecutiveHyphens
	ReasonInvalidChar
)

// InvalidNameError reports why NewName rejected its input.
type InvalidNameError struct {
	Input  string
	Reason InvalidNameReason
	// Length is set for ReasonTooLong.
	Length int
	// Char is set for ReasonInvalidChar.
	Char rune
}

func (e *InvalidNameError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "profile name cannot be empty"
	case ReasonTooLong:
		return fmt.Sprintf("profile name too long (%d chars, max %d)", e.Length, MaxNameLength)
	case ReasonEdgeHyphen:
		return "profile name cannot start or end with a hyphen"
	case ReasonConsecutiveHyphens:
		return "profile name cannot contain consecutive hyphens"
	default:
		return fmt.Sprintf("invalid character %q: only lowercase alphanumeric and hyphens allowed", e.Char)
	}
}

// NewName validates raw and returns its lowercase form.
// Uppercase ASCII letters are accepted and folded.
func NewName(raw string) (Name, error) {
	if raw == "" {
		return "", &InvalidNameError{Input: raw, Reason: ReasonEmpty}
	}
	if len(raw) > MaxNameLength {
		return "", &InvalidNameError{Input: raw, Reason: ReasonTooLong, Length: len(raw)}
	}
	if strings.HasPrefix(raw, "-") || strings.HasSuffix(raw, "-") {
		return "", &InvalidNameError{Input: raw, Reason: ReasonEdgeHyphen}
	}
	if strings.Contains(raw, "--") {
		return "", &InvalidNameError{Input: raw, Reason: ReasonConsecutiveHyphens}
	}
	for _, r := range raw {
		if !isNameRune(r) {
			return "", &InvalidNameError{Input: raw, Reason: ReasonInvalidChar, Char: r}
		}
	}
	return Name(strings.ToLower(raw)), nil
}

// MustName is NewName for compile-time constants. It panics on invalid input.
func MustName(raw string) Name {
	name, err := NewName(raw)
	if err != nil {
		panic(err)
	}
	return name
}

func isNameRune(r rune) bool {
	return r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
