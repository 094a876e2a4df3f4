package queue

import (
	"errors"

	"minutes/internal/services"
)

// ErrJobNotFound reports that a job row is gone, or has left the state the
// caller expected. The engine treats it as a cancellation.
var ErrJobNotFound = errors.New("job not found")

func storeError(operation string, err error) error {
	return services.Wrap(services.ErrStore, "queue", operation, "", err)
}
