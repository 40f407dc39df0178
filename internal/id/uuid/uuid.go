// Package uuid generates run identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered run IDs.
type Generator struct {
	newUUID func() (uuid.UUID, error)
}

// New returns a Generator backed by UUID v7.
func New() *Generator {
	return &Generator{newUUID: uuid.NewV7}
}

// NewID returns a new run ID.
func (g *Generator) NewID() (string, error) {
	id, err := g.newUUID()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}
