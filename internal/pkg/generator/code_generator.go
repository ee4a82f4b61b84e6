package generator

import (
	"github.com/google/uuid"
)

// IDGenerator issues opaque record identifiers.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether id looks like an identifier this service issued.
// Stores use it to short-circuit lookups that can never match.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
