package entities

import (
	"time"
)

// User represents a registered listener and their discovery preferences
type User struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	ConcertsPerMonth int       `json:"concerts_per_month" db:"concerts_per_month"`
	TicketBudget     float64   `json:"ticket_budget" db:"ticket_budget"`
	City             string    `json:"city,omitempty" db:"city"`
	Radius           int       `json:"radius" db:"radius"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// UserUpdate carries the mutable subset of User fields. Nil means unchanged.
type UserUpdate struct {
	Name             *string  `json:"name,omitempty"`
	Email            *string  `json:"email,omitempty"`
	ConcertsPerMonth *int     `json:"concerts_per_month,omitempty"`
	TicketBudget     *float64 `json:"ticket_budget,omitempty"`
	City             *string  `json:"city,omitempty"`
	Radius           *int     `json:"radius,omitempty"`
}

// Apply merges the update into the user in place
func (u *UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.ConcertsPerMonth != nil {
		user.ConcertsPerMonth = *u.ConcertsPerMonth
	}
	if u.TicketBudget != nil {
		user.TicketBudget = *u.TicketBudget
	}
	if u.City != nil {
		user.City = *u.City
	}
	if u.Radius != nil {
		user.Radius = *u.Radius
	}
}
