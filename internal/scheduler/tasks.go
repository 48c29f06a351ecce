package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDailyDigest = "analytics.daily_digest"

type DailyDigestPayload struct {
	// Requested marks manually enqueued runs, as opposed to the cron.
	Requested bool `json:"requested,omitempty"`
}

func NewDailyDigestTask(payload DailyDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyDigest, data), nil
}

func ParseDailyDigestPayload(task *asynq.Task) (DailyDigestPayload, error) {
	var payload DailyDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DailyDigestPayload{}, err
	}
	return payload, nil
}
