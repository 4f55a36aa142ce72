// Package types contains the JSON shapes served by the HTTP API.
package types

import "github.com/okian/mergington/internal/domain/model"

// ActivityView is the wire form of an activity; the name is the map key.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// NewActivityView converts a domain activity. Participants is never null.
func NewActivityView(a model.Activity) ActivityView {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

// Message is the success body of signup and unregister.
type Message struct {
	Message string `json:"message"`
}
