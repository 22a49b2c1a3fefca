// Package uuid wraps id generation so callers can be tested with fixed ids
package uuid

//go:generate mockgen -destination=mock/mock_generator.go -package=mockuuid -source=uuid.go

import (
	"github.com/google/uuid"
)

// Generator produces unique avatar ids
type Generator interface {
	New() string
}

// GoogleUUIDGenerator generates random (v4) ids
type GoogleUUIDGenerator struct{}

// New returns a new random id
func (g *GoogleUUIDGenerator) New() string {
	return uuid.NewString()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// Valid reports whether id parses as a uuid
func Valid(id string) bool {
	return uuid.Validate(id) == nil
}
