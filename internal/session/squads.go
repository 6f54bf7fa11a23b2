package session

// Squads is the fixed set of rowing squads plus the coach role. "None"
// is a real value, not an absence marker, so a member can explicitly
// opt out of team views.
var Squads = []string{"M1", "M2", "M3", "M4", "W1", "W2", "W3", "W4", "Coach", "None"}

func ValidSquad(squad string) bool {
	for _, s := range Squads {
		if s == squad {
			return true
		}
	}
	return false
}
