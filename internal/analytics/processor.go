package analytics

import (
	"context"

	"statspub/internal/analytics/engine"
)

// Processor supplies the per-category schema and queries the workflow engine
// drives. One implementation exists per incoming log category; the claim,
// quarantine, and report lifecycle is shared.
type Processor interface {
	// Name identifies the processor in configuration and logs.
	Name() string
	// Directories returns the processor's source/processing/failures/reports quad.
	Directories() Directories
	// InitialiseSchema creates the run's tables in the analytical engine.
	InitialiseSchema(ctx context.Context, eng *engine.Engine) error
	// ProcessSourceFile ingests one claimed log file. An error quarantines the
	// file without aborting the batch.
	ProcessSourceFile(ctx context.Context, path string, eng *engine.Engine) error
	// CreateAggregateReports runs the aggregation and writes report files whose
	// paths start with pathPrefix.
	CreateAggregateReports(ctx context.Context, pathPrefix string, eng *engine.Engine) error
}
