package v1alpha1

import (
	"fmt"

	"github.com/google/uuid"
)

// ImportJobID identifies an import job for the lifetime of the process.
type ImportJobID = uuid.UUID

type ImportJobState string

const (
	ImportJobStateQueued     ImportJobState = "queued"
	ImportJobStateInProgress ImportJobState = "in-progress"
	ImportJobStateCompleted  ImportJobState = "completed"
	ImportJobStateFailed     ImportJobState = "failed"
)

// ImportJob pairs a job id with the locator it imports.
type ImportJob struct {
	ID      ImportJobID
	Locator Locator
}

// ImportJobStatus is the observable state of an import job.
// Progress is set only for in-progress, Info only for completed and Error only for failed.
type ImportJobStatus struct {
	State    ImportJobState `json:"type"`
	Progress *float32       `json:"progress,omitempty"`
	Info     *string        `json:"info,omitempty"`
	Error    *string        `json:"error,omitempty"`
}

func QueuedStatus() ImportJobStatus {
	return ImportJobStatus{State: ImportJobStateQueued}
}

func InProgressStatus(progress float32) ImportJobStatus {
	return ImportJobStatus{State: ImportJobStateInProgress, Progress: &progress}
}

func CompletedStatus(info *string) ImportJobStatus {
	return ImportJobStatus{State: ImportJobStateCompleted, Info: info}
}

func FailedStatus(err *string) ImportJobStatus {
	return ImportJobStatus{State: ImportJobStateFailed, Error: err}
}

// IsTerminal reports whether no further transition may leave this status.
func (s ImportJobStatus) IsTerminal() bool {
	return s.State == ImportJobStateCompleted || s.State == ImportJobStateFailed
}

func (s ImportJobStatus) String() string {
	switch s.State {
	case ImportJobStateInProgress:
		if s.Progress != nil {
			return fmt.Sprintf("%s(%.2f)", s.State, *s.Progress)
		}
	case ImportJobStateCompleted:
		if s.Info != nil {
			return fmt.Sprintf("%s(%s)", s.State, *s.Info)
		}
	case ImportJobStateFailed:
		if s.Error != nil {
			return fmt.Sprintf("%s(%s)", s.State, *s.Error)
		}
	}
	return string(s.State)
}

func StringToImportJobState(s string) (ImportJobState, error) {
	switch s {
	case string(ImportJobStateQueued):
		return ImportJobStateQueued, nil
	case string(ImportJobStateInProgress):
		return ImportJobStateInProgress, nil
	case string(ImportJobStateCompleted):
		return ImportJobStateCompleted, nil
	case string(ImportJobStateFailed):
		return ImportJobStateFailed, nil
	default:
		return "", fmt.Errorf("unknown import job state %q", s)
	}
}

type GetAllJobStatusResponse struct {
	ImportJobs map[ImportJobID]ImportJobStatus `json:"import_jobs"`
}
