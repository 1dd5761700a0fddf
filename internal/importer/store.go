package importer

import (
	"sync"

	api "github.com/kubev2v/model-server/api/v1alpha1"
)

type JobEntry struct {
	Job    api.ImportJob
	Status api.ImportJobStatus
}

// JobStore is the authoritative table of import jobs. Reads may run
// concurrently, writes are serialized.
type JobStore struct {
	mu      sync.RWMutex
	entries map[api.ImportJobID]*JobEntry
}

func NewJobStore() *JobStore {
	return &JobStore{entries: make(map[api.ImportJobID]*JobEntry)}
}

func (s *JobStore) Insert(entry JobEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.entries[entry.Job.ID]; found {
		return ErrDuplicateJob
	}
	s.entries[entry.Job.ID] = &entry
	return nil
}

func (s *JobStore) Get(id api.ImportJobID) (JobEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[id]
	if !found {
		return JobEntry{}, NewErrJobNotFound(id)
	}
	return *entry, nil
}

// List returns a point in time copy of every job status.
func (s *JobStore) List() map[api.ImportJobID]api.ImportJobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[api.ImportJobID]api.ImportJobStatus, len(s.entries))
	for id, entry := range s.entries {
		statuses[id] = entry.Status
	}
	return statuses
}

func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Counts returns the number of jobs per state. States without jobs are reported as zero.
func (s *JobStore) Counts() map[api.ImportJobState]int {
	counts := map[api.ImportJobState]int{
		api.ImportJobStateQueued:     0,
		api.ImportJobStateInProgress: 0,
		api.ImportJobStateCompleted:  0,
		api.ImportJobStateFailed:     0,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		counts[entry.Status.State]++
	}
	return counts
}

// apply replaces the status of a job. Only the status loop calls it.
func (s *JobStore) apply(id api.ImportJobID, status api.ImportJobStatus) (api.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.entries[id]
	if !found {
		return api.ImportJob{}, NewErrJobNotFound(id)
	}
	if !isValidTransition(entry.Status, status) {
		return entry.Job, NewErrInvalidTransition(id, entry.Status.State, status.State)
	}
	entry.Status = status
	return entry.Job, nil
}

// isValidTransition enforces queued -> in-progress* -> completed|failed.
// Progress inside in-progress never goes backwards.
func isValidTransition(from, to api.ImportJobStatus) bool {
	switch from.State {
	case api.ImportJobStateQueued:
		return to.State != api.ImportJobStateQueued
	case api.ImportJobStateInProgress:
		switch to.State {
		case api.ImportJobStateInProgress:
			return progressOf(to) >= progressOf(from)
		case api.ImportJobStateCompleted, api.ImportJobStateFailed:
			return true
		}
	}
	return false
}

func progressOf(status api.ImportJobStatus) float32 {
	if status.Progress == nil {
		return 0
	}
	return *status.Progress
}
