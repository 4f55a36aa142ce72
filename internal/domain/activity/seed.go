package activity

import "github.com/okian/mergington/internal/domain/model"

// DefaultSeed returns the activities the registry starts with when no
// seed is configured. Each call returns fresh slices.
func DefaultSeed() []model.Activity {
	return []model.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		// Sports
		{
			Name:            "Soccer Team",
			Description:     "Team practices, drills and inter-school matches",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 22,
			Participants:    []string{"alex@mergington.edu", "noah@mergington.edu"},
		},
		{
			Name:            "Swimming Club",
			Description:     "Lap training, technique work and lifeguard basics",
			Schedule:        "Tuesdays and Thursdays, 5:00 PM - 6:30 PM",
			MaxParticipants: 25,
			Participants:    []string{"linda@mergington.edu"},
		},
		// Artistic
		{
			Name:            "Art Club",
			Description:     "Drawing, painting and mixed-media workshops",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"sarah@mergington.edu"},
		},
		{
			Name:            "Drama Club",
			Description:     "Acting exercises, rehearsals and stage productions",
			Schedule:        "Fridays, 4:00 PM - 6:00 PM",
			MaxParticipants: 20,
			Participants:    []string{"drew@mergington.edu"},
		},
		// Intellectual
		{
			Name:            "Debate Team",
			Description:     "Prepare for debates, practice argumentation and public speaking",
			Schedule:        "Tuesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 16,
			Participants:    []string{"hanna@mergington.edu"},
		},
		{
			Name:            "Math Club",
			Description:     "Problem solving, competitions and math enrichment",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"marco@mergington.edu"},
		},
	}
}
