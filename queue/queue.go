// Package queue delivers payment notifications to client apps out of process.
//
// Enqueue only has to make a job durable; delivery, retries and backoff are
// handled by Worker.
package queue

import (
	"context"
	"fmt"
)

// Notifier accepts a notification for later delivery to endpoint.
type Notifier interface {
	Enqueue(ctx context.Context, endpoint string, payload map[string]interface{}) error
}

// QueueError is returned when a notification could not be enqueued.
type QueueError struct {
	Endpoint string
	Err      error
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("enqueue notification for %s: %v", e.Endpoint, e.Err)
}

func (e *QueueError) Unwrap() error {
	return e.Err
}
