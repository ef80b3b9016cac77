package database

import (
	"testing"
)

// Adapter round-trip tests run against a real Postgres instance; they are
// skipped in short mode and when no database is configured.

func TestTasteProfileAdapter_UpsertReplacesProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	// GIVEN: a stored profile for a user
	// WHEN: Upsert is called again for the same user_id
	// THEN: the genre maps and artist lists are replaced, not duplicated
	t.Skip("Requires database connection")
}

func TestTasteProfileAdapter_GetByUserIDDecodesMaps(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	// GIVEN: a profile stored with JSONB genre maps and array artist columns
	// WHEN: GetByUserID is called
	// THEN: GenreMap and RootGenreMap round-trip with their float weights
	t.Skip("Requires database connection")
}
