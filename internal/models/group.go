package models

import "time"

// Group represents a named collection of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g. "Flatmates", "Goa Trip").
	Name string `json:"name"`

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string `json:"created_by"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// GroupMember represents one user's membership in a group. Name, Email and
// UPIAddress are populated from the member's profile row when the membership
// is loaded with an embedded join; they are read-only here.
type GroupMember struct {
	GroupID    string    `json:"group_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	UPIAddress string    `json:"upi_address,omitempty"`
	JoinedAt   time.Time `json:"joined_at,omitzero"`
}
