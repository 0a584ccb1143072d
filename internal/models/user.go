package models

import "time"

// User represents a registered account, stored as a row in the profiles table.
// The ID matches the identity issued by the auth collaborator, so a profile
// row and its auth identity always share a key.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique).
	Email string `json:"email"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// UPIAddress is the user's UPI virtual payment address
	// (e.g. "name@bank"), used as the payee in settlement deep links.
	// Optional; members without one cannot be settled to via deep link.
	UPIAddress string `json:"upi_address,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}
