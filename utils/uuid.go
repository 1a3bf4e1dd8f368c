package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// GeneratePrefixedID returns a unique identifier tagged with a short entity prefix, e.g. "bid_..."
func GeneratePrefixedID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
