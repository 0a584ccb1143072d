// Package rest implements storage.Store on the hosted backend's row-level
// query API. Each Store operation is one or two filtered requests against a
// logical table; the backend's row-level security decides what the acting
// user may see.
package rest

import (
	"github.com/Shritej1000/Spiltzee/internal/postgrest"
	"github.com/Shritej1000/Spiltzee/internal/storage"
)

// Table names in the hosted backend.
const (
	tableProfiles      = "profiles"
	tableExpenses      = "expenses"
	tableGroups        = "groups"
	tableGroupMembers  = "group_members"
	tableGroupExpenses = "group_expenses"
	tableSplits        = "splits"
	tableSettlements   = "settlements"
)

// Ensure RestStore implements storage.Store
var _ storage.Store = (*RestStore)(nil)

// RestStore implements storage.Store using the row-level query client.
type RestStore struct {
	client *postgrest.Client
}

// New creates a RestStore over the given query client.
func New(client *postgrest.Client) *RestStore {
	return &RestStore{client: client}
}
