// Package repository defines the activity registry interface and its
// in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/model"
)

// Store provides read/write access to activity rosters.
//
// Implementations must apply the duplicate check, the capacity check and the
// roster mutation of Signup under a single critical section, and Unregister
// must be mutually exclusive with Signup on the same activity.
type Store interface {
	// List returns a snapshot of every activity keyed by name.
	List(ctx context.Context) map[string]model.Activity

	// Get returns a snapshot of one activity.
	// Returns activity.ErrActivityNotFound if the name is unknown.
	Get(ctx context.Context, name string) (model.Activity, error)

	// Signup appends email to the activity's roster.
	Signup(ctx context.Context, name, email string) (model.Confirmation, error)

	// Unregister removes the participant matching email case-insensitively.
	Unregister(ctx context.Context, name, email string) (model.Confirmation, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int
}
