// Package loadcheck drives concurrent signup traffic against a running
// service and verifies the roster invariants held.
package loadcheck

import "time"

// Config holds configuration for a load check run
type Config struct {
	BaseURL    string        // Base URL of the service
	Activity   string        // Activity to hammer
	Students   int           // Distinct students to sign up
	Duplicates int           // Extra signups that repeat a student in another case
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON report file
	Verbose    bool          // Enable verbose logging
}

// Activity mirrors the wire shape of GET /activities/{name}.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft reports the free capacity.
func (a Activity) SpotsLeft() int {
	if left := a.MaxParticipants - len(a.Participants); left > 0 {
		return left
	}
	return 0
}

// Attempt is one signup request sent by the tool.
type Attempt struct {
	Email  string `json:"email"`
	Result Result `json:"result"`
}

// Result classifies a response.
type Result string

// Results reported by the service.
const (
	ResultSignedUp     Result = "signed_up"
	ResultDuplicate    Result = "already_registered"
	ResultFull         Result = "activity_full"
	ResultUnregistered Result = "unregistered"
	ResultFailed       Result = "failed"
)

// Stats holds run statistics
type Stats struct {
	SignupsSent        int
	SignedUp           int
	Duplicates         int
	Full               int
	SignupFailures     int
	Unregistered       int
	UnregisterFailures int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
