package models

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the creator. The creator is always the first member.
	CreatedBy string

	// Members is the list of member user IDs in join order.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
