package queue

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Outbox is the storage a Worker drains.
type Outbox interface {
	Due(now time.Time, limit int) ([]Job, error)
	Complete(id string) error
	Retry(id string, next time.Time, reason string) error
}

// Worker posts due notifications to their endpoints. A job is removed on a
// 2xx response and retried with exponential backoff otherwise, until
// MaxAttempts deliveries have failed. The retry delay never exceeds
// MaxBackoff.
type Worker struct {
	Outbox      Outbox
	Client      *http.Client
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	Now         func() time.Time
}

func NewWorker(outbox Outbox, maxAttempts int, timeout time.Duration) *Worker {
	return &Worker{
		Outbox:      outbox,
		Client:      &http.Client{Timeout: timeout},
		Interval:    time.Second,
		BatchSize:   50,
		MaxAttempts: maxAttempts,
		Backoff:     5 * time.Second,
		MaxBackoff:  time.Hour,
		Now:         time.Now,
	}
}

// Run processes the outbox every Interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessDue(ctx); err != nil {
			log.Printf("notify worker: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue makes one delivery attempt for every due job and returns how
// many were delivered.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	jobs, err := w.Outbox.Due(w.Now(), w.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due notifications: %w", err)
	}

	delivered := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return delivered, nil
		}

		deliverErr := w.deliver(ctx, job)
		if deliverErr == nil {
			delivered++
			if err := w.Outbox.Complete(job.ID); err != nil {
				return delivered, fmt.Errorf("failed to complete notification %s: %w", job.ID, err)
			}
			continue
		}

		attempts := job.Attempts + 1
		if attempts >= w.MaxAttempts {
			log.Printf("dropping notification %s to %s after %d attempts: %v", job.ID, job.Endpoint, attempts, deliverErr)
			if err := w.Outbox.Complete(job.ID); err != nil {
				return delivered, fmt.Errorf("failed to drop notification %s: %w", job.ID, err)
			}
			continue
		}

		next := w.Now().Add(w.backoff(attempts))
		if err := w.Outbox.Retry(job.ID, next, deliverErr.Error()); err != nil {
			return delivered, fmt.Errorf("failed to reschedule notification %s: %w", job.ID, err)
		}
	}

	return delivered, nil
}

// backoff returns the delay after the given number of failed attempts:
// Backoff doubled per earlier failure, capped at MaxBackoff.
func (w *Worker) backoff(attempts int) time.Duration {
	delay := w.Backoff
	for i := 1; i < attempts && delay < w.MaxBackoff; i++ {
		delay *= 2
	}
	if delay > w.MaxBackoff {
		delay = w.MaxBackoff
	}
	return delay
}

func (w *Worker) deliver(ctx context.Context, job Job) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.Endpoint, bytes.NewReader(job.Payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
