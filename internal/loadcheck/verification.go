package loadcheck

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Verification errors.
var (
	ErrCapacityExceeded = errors.New("roster exceeds capacity")
	ErrDuplicateRoster  = errors.New("roster holds a duplicate participant")
	ErrLostSignup       = errors.New("accepted signup missing from roster")
	ErrOverAdmitted     = errors.New("more signups accepted than free spots")
	ErrNotRestored      = errors.New("roster not restored after unregister")
)

// verifyRoster checks the invariants of a roster snapshot.
func verifyRoster(a Activity) error {
	if len(a.Participants) > a.MaxParticipants {
		return fmt.Errorf("%w: %d > %d", ErrCapacityExceeded, len(a.Participants), a.MaxParticipants)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		k := strings.ToLower(strings.TrimSpace(p))
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateRoster, p)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// verifySignups checks the roster after the signup phase against what the
// service acknowledged.
func verifySignups(before, after Activity, attempts []Attempt) error {
	if err := verifyRoster(after); err != nil {
		return err
	}

	var accepted []string
	for _, a := range attempts {
		if a.Result == ResultSignedUp {
			accepted = append(accepted, a.Email)
		}
	}
	if len(accepted) > before.SpotsLeft() {
		return fmt.Errorf("%w: %d accepted, %d free", ErrOverAdmitted, len(accepted), before.SpotsLeft())
	}
	for _, email := range accepted {
		if !slices.Contains(after.Participants, email) {
			return fmt.Errorf("%w: %q", ErrLostSignup, email)
		}
	}
	if want := len(before.Participants) + len(accepted); len(after.Participants) != want {
		return fmt.Errorf("%w: roster has %d, expected %d", ErrLostSignup, len(after.Participants), want)
	}
	return nil
}

// verifyRestored checks that the roster is back to its starting order.
func verifyRestored(before, after Activity) error {
	if !slices.Equal(before.Participants, after.Participants) {
		return fmt.Errorf("%w: before %v, after %v", ErrNotRestored, before.Participants, after.Participants)
	}
	return nil
}
