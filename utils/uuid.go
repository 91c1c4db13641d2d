package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// RequestID returns an id for correlating one remote round trip in logs.
func RequestID() string {
	return "req-" + uuid.NewString()
}
