// Package analysis defines the downstream collaborator interface. Ingestion
// only hands records off; what analysis does with them is out of its hands.
package analysis

import (
	"context"
	"log"
)

// Analyzer consumes a newly created transcript record. Implementations are
// expected to be independently retriable against the record id; ingestion
// never awaits them.
type Analyzer interface {
	Analyze(ctx context.Context, recordID string) error
}

// LogAnalyzer is the default no-op collaborator: it records the handoff and
// nothing else. Deployments swap in a real implementation here.
type LogAnalyzer struct{}

// Analyze logs the record id and returns nil.
func (LogAnalyzer) Analyze(_ context.Context, recordID string) error {
	log.Printf("analysis requested for record %s", recordID)
	return nil
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, recordID string) error

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, recordID string) error {
	return f(ctx, recordID)
}
