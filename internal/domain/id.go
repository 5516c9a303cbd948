package domain

import "github.com/google/uuid"

// NewID returns a time-ordered UUID (v7), so ids sort roughly by creation.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
