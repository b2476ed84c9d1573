package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScoreLeads = "leads.score"

const TaskGenerateForecast = "forecast.generate"

// ScoreLeadsPayload restricts a scoring task to specific leads. An empty
// list scores every active lead.
type ScoreLeadsPayload struct {
	LeadIDs []string `json:"leadIds,omitempty"`
	Trigger string   `json:"trigger,omitempty"`
}

type GenerateForecastPayload struct {
	Trigger string `json:"trigger,omitempty"`
}

func NewScoreLeadsTask(payload ScoreLeadsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreLeads, data), nil
}

func ParseScoreLeadsPayload(task *asynq.Task) (ScoreLeadsPayload, error) {
	var payload ScoreLeadsPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreLeadsPayload{}, err
	}
	return payload, nil
}

func NewGenerateForecastTask(payload GenerateForecastPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateForecast, data), nil
}

func ParseGenerateForecastPayload(task *asynq.Task) (GenerateForecastPayload, error) {
	var payload GenerateForecastPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GenerateForecastPayload{}, err
	}
	return payload, nil
}
