package domain

import "github.com/samber/lo"

// Activity is a club, class or team that students can join by email.
// Name is both the identifier and the display key.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// HasParticipant reports whether email is already on the roster.
func (a Activity) HasParticipant(email string) bool {
	return lo.Contains(a.Participants, email)
}

// Clone returns a copy whose roster does not share memory with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return out
}
