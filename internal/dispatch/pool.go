// Package dispatch provides the in-process analysis pool used when no Redis
// queue is configured. Goroutines + channels power the implementation; a
// full asynq deployment replaces it without touching the pipeline.
package dispatch

import (
	"context"
	"log"

	"github.com/callsift/callsift/internal/analysis"
)

// Job identifies one record handed off for analysis.
type Job struct {
	RecordID string
	Path     string
}

// Pool consumes Jobs on a fixed set of workers.
type Pool struct {
	analyzer analysis.Analyzer
	queue    chan Job
	workers  int
}

// NewPool builds a Pool with queue capacity tied to worker count.
func NewPool(analyzer analysis.Analyzer, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		analyzer: analyzer,
		queue:    make(chan Job, workers*4),
		workers:  workers,
	}
}

// Start launches worker goroutines that run until the context closes.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}
}

// Dispatch queues a job without blocking ingestion. When the buffer is full
// the job goes straight to the dead-letter log; the record already exists
// and can be re-analyzed from there.
func (p *Pool) Dispatch(_ context.Context, recordID, path string) error {
	select {
	case p.queue <- Job{RecordID: recordID, Path: path}:
	default:
		log.Printf("DEAD-LETTER analysis for record %s (%s): dispatch queue full", recordID, path)
	}
	return nil
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			if err := p.analyzer.Analyze(ctx, job.RecordID); err != nil {
				log.Printf("DEAD-LETTER analysis for record %s (%s): %v", job.RecordID, job.Path, err)
			}
		}
	}
}
