// Package model contains domain models passed between layers.
package model

// Activity is an extracurricular offering with a capacity and a roster.
// Participants holds trimmed emails in signup order with their original case.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Clone returns a copy that shares no memory with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// SpotsLeft reports how many more students can sign up.
func (a Activity) SpotsLeft() int {
	if left := a.MaxParticipants - len(a.Participants); left > 0 {
		return left
	}
	return 0
}

// Full reports whether the roster has reached capacity.
func (a Activity) Full() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// Confirmation is returned by successful roster mutations.
type Confirmation struct {
	Activity string
	Email    string
}
