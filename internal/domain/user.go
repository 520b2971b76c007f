package domain

import "time"

// User is the authenticated principal attached to a request.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
