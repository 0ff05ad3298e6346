package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskExpertHandoff = "experts.handoff"

const TaskWorkloadRefresh = "experts.workload.refresh"

const TaskSessionSweep = "conversation.sessions.sweep"

type HandoffExpert struct {
	ExpertID string  `json:"expertId"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
}

type ExpertHandoffPayload struct {
	SessionID string          `json:"sessionId"`
	Service   string          `json:"service"`
	Experts   []HandoffExpert `json:"experts"`
}

func NewExpertHandoffTask(payload ExpertHandoffPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpertHandoff, data), nil
}

func ParseExpertHandoffPayload(task *asynq.Task) (ExpertHandoffPayload, error) {
	var payload ExpertHandoffPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ExpertHandoffPayload{}, err
	}
	return payload, nil
}

// NewWorkloadRefreshTask and NewSessionSweepTask carry no payload; the
// periodic scheduler enqueues them on their cron specs.
func NewWorkloadRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskWorkloadRefresh, nil)
}

func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}
