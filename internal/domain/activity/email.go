// Package activity holds the roster rules shared by every registry
// implementation: email shape checks, case-insensitive matching and seed
// validation.
package activity

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/mergington/internal/domain/model"
)

// local@domain.tld with no '@' or whitespace inside any part.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CleanEmail trims raw and checks its shape. The returned value keeps the
// caller's casing; use Key for comparisons.
func CleanEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return email, nil
}

// Key returns the comparison form of an email: trimmed and lower-cased.
// Lowering keeps distinct spellings such as "ß" and "ss" apart.
func Key(email string) string {
	// cases.Caser is stateful; build one per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// IndexOf returns the position of the participant matching email
// case-insensitively, or -1.
func IndexOf(participants []string, email string) int {
	key := Key(email)
	for i, p := range participants {
		if Key(p) == key {
			return i
		}
	}
	return -1
}

// Validate checks that a seeded activity already satisfies the roster
// invariants.
func Validate(a model.Activity) error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidActivity)
	case a.MaxParticipants <= 0:
		return fmt.Errorf("%w: %q: max_participants must be positive", ErrInvalidActivity, a.Name)
	case len(a.Participants) > a.MaxParticipants:
		return fmt.Errorf("%w: %q: %d participants exceed capacity %d",
			ErrInvalidActivity, a.Name, len(a.Participants), a.MaxParticipants)
	}

	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		if _, err := CleanEmail(p); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidActivity, a.Name, err)
		}
		k := Key(p)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %q: duplicate participant %q", ErrInvalidActivity, a.Name, p)
		}
		seen[k] = struct{}{}
	}
	return nil
}
