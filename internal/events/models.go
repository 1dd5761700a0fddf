package events

import (
	api "github.com/kubev2v/model-server/api/v1alpha1"
)

type ImportJobEvent struct {
	JobID   api.ImportJobID     `json:"job_id"`
	Source  api.LocatorEnvelope `json:"source"`
	Status  api.ImportJobStatus `json:"status"`
	Message string              `json:"message"`
}
