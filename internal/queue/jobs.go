package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// AnalyzeTranscriptTask is scheduled each time a record is created.
	AnalyzeTranscriptTask = "transcript:analyze"
)

// AnalyzePayload is serialized into the task so the worker knows which
// record to analyze. Filepath rides along purely for log readability.
type AnalyzePayload struct {
	RecordID string `json:"record_id"`
	Filepath string `json:"filepath"`
}

// EnqueueAnalyze enqueues an analysis job for a freshly created record.
func EnqueueAnalyze(ctx context.Context, client *asynq.Client, payload AnalyzePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(AnalyzeTranscriptTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue analyze task: %w", err)
	}
	return nil
}

// Dispatcher adapts an asynq client to the pipeline's dispatch contract.
type Dispatcher struct {
	client *asynq.Client
}

// NewDispatcher constructs a queue-backed dispatcher.
func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch enqueues the record for analysis. Enqueueing is quick and does
// not wait for the analysis itself.
func (d *Dispatcher) Dispatch(ctx context.Context, recordID, path string) error {
	return EnqueueAnalyze(ctx, d.client, AnalyzePayload{RecordID: recordID, Filepath: path})
}
