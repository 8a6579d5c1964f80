package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a random (version 4) UUID in canonical form.
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new uuid: %w", err)
	}
	return id.String(), nil
}
