// Package migration creates the schema in an empty database and reports on
// the tables an existing database already has.
package migration

import (
	"slices"

	"github.com/marshallshelly/booksales/pkg/schema"
)

// InitStatus is the outcome of Initializer.Initialize.
type InitStatus string

const (
	// StatusCreated means the database was empty and every table was created.
	StatusCreated InitStatus = "created"
	// StatusExisting means every registered table was already present.
	StatusExisting InitStatus = "existing"
	// StatusPartial means the database had tables but some registered ones
	// are missing. Nothing is created.
	StatusPartial InitStatus = "partial"
	// StatusFailed means creation hit an operational store error.
	StatusFailed InitStatus = "failed"
)

// InitResult reports what Initialize found and did.
type InitResult struct {
	Status   InitStatus
	Existing []string // tables present before the call
	Missing  []string // registered tables absent before the call
	Created  []string // tables created, in creation order
	Err      error    // captured operational error when Status is StatusFailed
}

// classify decides the status for a database that already holds tables.
func classify(existing []string, tables []*schema.TableMetadata) (InitStatus, []string) {
	var missing []string
	for _, table := range tables {
		if !slices.Contains(existing, table.Name) {
			missing = append(missing, table.Name)
		}
	}
	if len(missing) > 0 {
		return StatusPartial, missing
	}
	return StatusExisting, nil
}
