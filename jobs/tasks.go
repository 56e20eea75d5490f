package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup refreshes the cached product catalog.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload describes a catalog warm-up request.
type CatalogWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CatalogWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
