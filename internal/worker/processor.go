package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/callsift/callsift/internal/analysis"
	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/queue"
)

// RecordGetter is the slice of the store the worker needs.
type RecordGetter interface {
	Get(ctx context.Context, id string) (*model.Transcript, error)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	store    RecordGetter
	analyzer analysis.Analyzer
}

// NewProcessor constructs a worker processor.
func NewProcessor(store RecordGetter, analyzer analysis.Analyzer) *Processor {
	return &Processor{store: store, analyzer: analyzer}
}

// Handler registers the analyze job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.AnalyzeTranscriptTask, p.handleAnalyze)
	return mux
}

func (p *Processor) handleAnalyze(ctx context.Context, task *asynq.Task) error {
	var payload queue.AnalyzePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if _, err := p.store.Get(ctx, payload.RecordID); err != nil {
		return fmt.Errorf("load record %s: %w", payload.RecordID, err)
	}
	if err := p.analyzer.Analyze(ctx, payload.RecordID); err != nil {
		p.logFailure(ctx, payload, err)
		return err
	}
	log.Printf("record %s analyzed (%s)", payload.RecordID, payload.Filepath)
	return nil
}

// logFailure writes a dead-letter line once asynq's retry budget is spent.
// The record itself is untouched; a failed analysis is re-runnable from the
// id in this log line.
func (p *Processor) logFailure(ctx context.Context, payload queue.AnalyzePayload, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried >= maxRetry {
		log.Printf("DEAD-LETTER analysis for record %s (%s): %v", payload.RecordID, payload.Filepath, err)
		return
	}
	log.Printf("analysis failed for record %s (attempt %d/%d): %v", payload.RecordID, retried+1, maxRetry+1, err)
}
