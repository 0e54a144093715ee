// jobs/task_payloads.go
package jobs

import (
	"encoding/json"

	"staffclock/src/models"

	"github.com/hibiken/asynq"
)

const TypeCompleteSplit = "attendance:complete-split"

const completeSplitMaxRetry = 10

type CompleteSplitPayload struct {
	Plan models.SplitPlan `json:"plan"`
}

func NewCompleteSplitTask(plan models.SplitPlan) (*asynq.Task, error) {
	payload, err := json.Marshal(CompleteSplitPayload{Plan: plan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCompleteSplit, payload), nil
}

func CompleteSplitTaskID(splitID string) string {
	return "complete-split-" + splitID
}
