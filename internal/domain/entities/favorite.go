package entities

import "time"

// Favorite is a concert match a user saved for later
type Favorite struct {
	ID      string       `json:"id" db:"id"`
	UserID  string       `json:"user_id" db:"user_id"`
	Concert ConcertMatch `json:"concert"`
	SavedAt time.Time    `json:"saved_at" db:"saved_at"`
}
