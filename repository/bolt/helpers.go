package bolt

import (
	"github.com/google/uuid"
)

// newID returns a time-ordered identifier so ties on created_at sort stably.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
