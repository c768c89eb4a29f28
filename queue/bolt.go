package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"
)

const bucketName = "notifications"

var ErrJobNotFound = errors.New("notification job not found")

// Job is one pending notification.
type Job struct {
	ID          string          `json:"id"`
	Endpoint    string          `json:"endpoint"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	NextAttempt time.Time       `json:"next_attempt"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Bolt is a durable notification outbox kept in a BoltDB file.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the outbox at path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (q *Bolt) Close() error {
	return q.db.Close()
}

// Enqueue stores a new job. It returns once the job has been committed to
// disk; the job is due immediately.
func (q *Bolt) Enqueue(ctx context.Context, endpoint string, payload map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return &QueueError{Endpoint: endpoint, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &QueueError{Endpoint: endpoint, Err: err}
	}

	now := time.Now().UTC()
	job := Job{
		ID:          uuid.NewString(),
		Endpoint:    endpoint,
		Payload:     body,
		NextAttempt: now,
		CreatedAt:   now,
	}

	if err := q.put(&job); err != nil {
		return &QueueError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// Due returns up to limit jobs whose next attempt is not after now.
func (q *Bolt) Due(now time.Time, limit int) ([]Job, error) {
	var jobs []Job

	err := q.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		c := b.Cursor()
		for k, v := c.First(); k != nil && len(jobs) < limit; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err != nil {
				return err
			}
			if !job.NextAttempt.After(now) {
				jobs = append(jobs, job)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Get returns a single job.
func (q *Bolt) Get(id string) (*Job, error) {
	var job Job
	err := q.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if v == nil {
			return ErrJobNotFound
		}
		return json.Unmarshal(v, &job)
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Complete removes a job from the outbox.
func (q *Bolt) Complete(id string) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(id))
	})
}

// Retry records a failed attempt and reschedules the job.
func (q *Bolt) Retry(id string, next time.Time, reason string) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(id))
		if v == nil {
			return ErrJobNotFound
		}
		var job Job
		if err := json.Unmarshal(v, &job); err != nil {
			return err
		}
		job.Attempts++
		job.NextAttempt = next
		job.LastError = reason
		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

// Len returns the number of jobs in the outbox.
func (q *Bolt) Len() (int, error) {
	var n int
	err := q.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return n, err
}

func (q *Bolt) put(job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(job.ID), data)
	})
}
