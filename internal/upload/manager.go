// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package upload queues file uploads and runs them in the background.
package upload

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/staranto/smctl/internal/api"
)

// State is the lifecycle state of a job.
type State string

const (
	Waiting State = "WAITING"
	Running State = "RUNNING"
	Done    State = "DONE"
	Failed  State = "FAILED"
)

const (
	// MaxParallelUploads is how many jobs run at once.
	MaxParallelUploads = 1
	// ExpireAfter is how long a DONE job stays listed.
	ExpireAfter = 10 * time.Minute
	// MaxFileSize is the largest file the backend accepts.
	MaxFileSize int64 = 2 * 1024 * 1024 * 1024
)

// MaxFileSizeError is the error message of jobs rejected for size.
var MaxFileSizeError = fmt.Sprintf("File to large (max %d bytes)", MaxFileSize)

// Poster sends one file.
type Poster interface {
	PostFile(ctx context.Context, endpoint string, p *api.Payload) error
}

// Job is a snapshot of a scheduled upload.
type Job struct {
	ID           string
	Name         string
	Size         int64
	Endpoint     string
	Info         string
	State        State
	ErrorMessage string
}

// HumanSize renders the size for people.
func (j Job) HumanSize() string {
	return humanize.IBytes(uint64(max(j.Size, 0)))
}

type job struct {
	Job
	payload *api.Payload
}

// Manager runs scheduled uploads, at most MaxParallelUploads at a time.
type Manager struct {
	ctx         context.Context
	poster      Poster
	expireAfter time.Duration

	mu   sync.Mutex
	jobs []*job
	idle chan struct{}
	// inFlight counts posts that have not returned, listed or not.
	inFlight int
}

// Option customizes a Manager.
type Option func(*Manager)

// WithExpiry overrides ExpireAfter.
func WithExpiry(d time.Duration) Option {
	return func(m *Manager) { m.expireAfter = d }
}

// NewManager returns an idle Manager. Uploads run under ctx.
func NewManager(ctx context.Context, poster Poster, opts ...Option) *Manager {
	idle := make(chan struct{})
	close(idle)
	m := &Manager{
		ctx:         ctx,
		poster:      poster,
		expireAfter: ExpireAfter,
		idle:        idle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schedule queues p for posting to endpoint and returns the new job. Files
// above MaxFileSize fail right away.
func (m *Manager) Schedule(p *api.Payload, endpoint, info string) Job {
	j := &job{
		Job: Job{
			ID:       uuid.NewString(),
			Name:     p.Name,
			Size:     p.Size,
			Endpoint: endpoint,
			Info:     info,
			State:    Waiting,
		},
		payload: p,
	}
	if p.Size > MaxFileSize {
		j.State = Failed
		j.ErrorMessage = MaxFileSizeError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, j)
	log.Debugf("scheduled upload %s of %s (%s)", j.ID, j.Name, j.HumanSize())
	m.tryToStartLocked()
	return j.Job
}

// Remove drops a job from the list. A running upload is not interrupted and
// still holds its slot until the post returns.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = slices.DeleteFunc(m.jobs, func(j *job) bool { return j.ID == id })
	m.tryToStartLocked()
}

// Jobs returns a snapshot of all jobs in scheduling order.
func (m *Manager) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Job)
	}
	return out
}

// Wait blocks until no job is waiting or running.
func (m *Manager) Wait(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) count(s State) int {
	n := 0
	for _, j := range m.jobs {
		if j.State == s {
			n++
		}
	}
	return n
}

func (m *Manager) tryToStartLocked() {
	busy := m.inFlight > 0 || m.count(Waiting) > 0
	select {
	case <-m.idle:
		if busy {
			m.idle = make(chan struct{})
		}
	default:
		if !busy {
			close(m.idle)
		}
	}

	if m.inFlight >= MaxParallelUploads {
		return
	}
	for _, j := range m.jobs {
		if j.State == Waiting {
			j.State = Running
			m.inFlight++
			go m.run(j)
			return
		}
	}
}

func (m *Manager) run(j *job) {
	err := m.poster.PostFile(m.ctx, j.Endpoint, j.payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if err != nil {
		j.State = Failed
		j.ErrorMessage = err.Error()
		log.WithError(err).Warnf("upload %s of %s failed", j.ID, j.Name)
	} else {
		j.State = Done
		log.Debugf("upload %s of %s done", j.ID, j.Name)
		id := j.ID
		time.AfterFunc(m.expireAfter, func() { m.Remove(id) })
	}
	m.tryToStartLocked()
}
