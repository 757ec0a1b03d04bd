// Package ports defines the interfaces between the analysis core and its
// adapters (persistence, reporting, data sources).
package ports

import (
	"context"

	"evosweep/domain/pareto"
	"evosweep/domain/stats"
)

// ResultLedgerPort persists flat result records for a batch run
type ResultLedgerPort interface {
	StoreManifest(ctx context.Context, manifest stats.RunManifest) error
	StoreNormality(ctx context.Context, runID string, records []stats.NormalityRecord) error
	StoreOmnibus(ctx context.Context, runID string, records []stats.OmnibusRecord) error
	StorePostHoc(ctx context.Context, runID string, records []stats.PostHocRecord) error
}

// ReportWriterPort exports a batch run as a human-readable report
type ReportWriterPort interface {
	WriteReport(path string, report Report) error
}

// Report bundles everything a report writer needs
type Report struct {
	Manifest  stats.RunManifest
	Normality []stats.NormalityRecord
	Omnibus   []stats.OmnibusRecord
	PostHoc   []stats.PostHocRecord
	Fronts    map[string]pareto.Partition
}

// ExperimentSourcePort loads sample groups and solution sets produced by the
// external optimizer runs. Formats and file layouts are an adapter concern;
// the core only sees numeric sequences and labels.
type ExperimentSourcePort interface {
	// LoadMetricGroups returns one named group of repeated-run measurements
	// per discovered configuration.
	LoadMetricGroups(metric string) ([]stats.Sample, error)
	// LoadFronts returns the pooled two-objective solution set of each
	// configuration's replicate runs.
	LoadFronts() (map[string][]pareto.Solution, error)
}
