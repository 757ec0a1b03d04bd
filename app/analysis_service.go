// Package app wires the statistical adapters into the normality-driven
// analysis pipeline and the Pareto workflow. Services hold no mutable state
// beyond their dependencies and are safe for concurrent use.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"evosweep/adapters/stats/normality"
	"evosweep/adapters/stats/omnibus"
	"evosweep/adapters/stats/posthoc"
	"evosweep/domain/core"
	domain "evosweep/domain/stats"
	"evosweep/internal"
	"evosweep/internal/errors"
	"evosweep/ports"
)

// GroupMode selects how per-group normality verdicts are aggregated into the
// single flag that drives omnibus test selection.
type GroupMode string

const (
	// GroupModeConjunction requires every group to be classified normal.
	GroupModeConjunction GroupMode = "conjunction"
	// GroupModeMajority requires a strict majority of groups to be normal.
	GroupModeMajority GroupMode = "majority"
)

// AnalysisService runs the full pipeline for one factor:
// per-group normality screen, omnibus test selection, post-hoc follow-up.
type AnalysisService struct {
	logger *internal.Logger
	ledger ports.ResultLedgerPort // nil disables persistence
}

// NewAnalysisService creates the analysis service. The ledger may be nil.
func NewAnalysisService(logger *internal.Logger, ledger ports.ResultLedgerPort) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{logger: logger.Named("analysis"), ledger: ledger}
}

// ClassifyGroups runs the chosen normality test on every non-empty group and
// aggregates the verdicts. Empty groups are skipped with a warning; if no
// valid group remains the whole classification is an error.
func (s *AnalysisService) ClassifyGroups(samples []domain.Sample, method domain.NormalityMethod, alpha float64) (domain.GroupVerdicts, error) {
	classifier, ok := normality.ForMethod(method)
	if !ok {
		return domain.GroupVerdicts{}, errors.InvalidInput("unknown normality method: " + string(method))
	}

	verdicts := domain.GroupVerdicts{
		PerGroup: make(map[core.GroupName]domain.NormalityVerdict),
		Alpha:    alpha,
	}
	for _, sample := range samples {
		if sample.N() == 0 {
			s.logger.Warn("skipping empty group %q", sample.Name)
			continue
		}
		v := classifier.Classify(sample, alpha)
		verdicts.PerGroup[sample.Name] = v
		verdicts.Groups = append(verdicts.Groups, sample.Name)
		if v.IsNormal {
			verdicts.NormalVote++
		}
	}
	if len(verdicts.Groups) == 0 {
		return domain.GroupVerdicts{}, core.ErrNoValidGroups
	}

	verdicts.AllNormal = verdicts.NormalVote == len(verdicts.Groups)
	return verdicts, nil
}

// FactorAnalysis is the full pipeline outcome for one factor
type FactorAnalysis struct {
	AnalysisID core.AnalysisID             `json:"analysis_id"`
	Factor     string                      `json:"factor"`
	Mode       GroupMode                   `json:"group_mode"`
	Verdicts   domain.GroupVerdicts        `json:"normality"`
	Omnibus    *domain.OmnibusResult       `json:"omnibus,omitempty"`
	PostHoc    []domain.PairwiseComparison `json:"post_hoc,omitempty"`
}

// AnalyzeFactor runs normality -> omnibus -> post-hoc for one factor.
// Post-hoc comparisons run only after a significant omnibus result.
func (s *AnalysisService) AnalyzeFactor(factor string, samples []domain.Sample, method domain.NormalityMethod, mode GroupMode, alpha float64) (*FactorAnalysis, error) {
	verdicts, err := s.ClassifyGroups(samples, method, alpha)
	if err != nil {
		return nil, errors.Wrapf(err, "normality screen failed for factor %q", factor)
	}

	parametric := verdicts.AllNormal
	if mode == GroupModeMajority {
		parametric = verdicts.MajorityNormal()
	}
	s.logger.Debug("factor %s: %d/%d groups normal, parametric=%t",
		factor, verdicts.NormalVote, len(verdicts.Groups), parametric)

	result, err := omnibus.Compare(samples, alpha, parametric)
	if err != nil {
		return nil, errors.Wrapf(err, "omnibus comparison failed for factor %q", factor)
	}

	analysis := &FactorAnalysis{
		AnalysisID: core.AnalysisID(core.NewID()),
		Factor:     factor,
		Mode:       mode,
		Verdicts:   verdicts,
		Omnibus:    &result,
	}
	if result.Significant {
		analysis.PostHoc = posthoc.Analyze(samples, result.Method, alpha)
		s.logger.Info("factor %s: %s significant (p=%.4g), %d pairwise comparisons",
			factor, result.Method, result.PValue, len(analysis.PostHoc))
	} else {
		s.logger.Info("factor %s: %s not significant (p=%.4g)", factor, result.Method, result.PValue)
	}
	return analysis, nil
}

// AnalysisUnit is one independent work item of a batch run
type AnalysisUnit struct {
	Factor  string          `json:"factor"`
	Metric  string          `json:"metric"`
	Samples []domain.Sample `json:"samples"`
}

// BatchRequest describes a full batch run
type BatchRequest struct {
	Units       []AnalysisUnit         `json:"units"`
	Method      domain.NormalityMethod `json:"method"`
	Mode        GroupMode              `json:"group_mode"`
	Alpha       float64                `json:"alpha"`
	Parallelism int                    `json:"parallelism"` // <= 0 means one goroutine per unit
}

// UnitOutcome pairs one unit with its analysis or its failure. Exactly one of
// Analysis and FailureCode is set.
type UnitOutcome struct {
	Factor      string          `json:"factor"`
	Metric      string          `json:"metric"`
	Analysis    *FactorAnalysis `json:"analysis,omitempty"`
	FailureCode string          `json:"failure_code,omitempty"`
	FailureNote string          `json:"failure_note,omitempty"`
}

// BatchOutcome is the result of a full batch run: one outcome per unit in
// input order plus the manifest and the flattened record tables.
type BatchOutcome struct {
	Manifest  *domain.RunManifest      `json:"manifest"`
	Outcomes  []UnitOutcome            `json:"outcomes"`
	Normality []domain.NormalityRecord `json:"normality_records"`
	Omnibus   []domain.OmnibusRecord   `json:"omnibus_records"`
	PostHoc   []domain.PostHocRecord   `json:"post_hoc_records"`
}

// RunBatch fans the units out across goroutines and collects one outcome per
// unit, in input order. A failing unit is recorded with its error code and
// never aborts the batch; only persistence errors propagate.
func (s *AnalysisService) RunBatch(ctx context.Context, req BatchRequest) (*BatchOutcome, error) {
	if len(req.Units) == 0 {
		return nil, errors.InvalidInput("batch needs at least one analysis unit")
	}
	if req.Alpha <= 0 || req.Alpha >= 1 {
		return nil, errors.InvalidInput("alpha must be in (0, 1)")
	}

	start := time.Now()
	runID := core.RunID(core.NewID())

	groupSizes := make(map[string]int)
	for _, u := range req.Units {
		for _, sample := range u.Samples {
			groupSizes[u.Factor+"/"+sample.Name.String()] = sample.N()
		}
	}
	manifest := domain.NewRunManifest(runID, core.ComputeConfigHash(groupSizes), req.Alpha)
	manifest.UnitsTotal = len(req.Units)

	s.logger.Info("batch %s: %d units, alpha=%.3g, method=%s", runID, len(req.Units), req.Alpha, req.Method)

	outcomes := make([]UnitOutcome, len(req.Units))
	g, ctx := errgroup.WithContext(ctx)
	if req.Parallelism > 0 {
		g.SetLimit(req.Parallelism)
	}
	for i, unit := range req.Units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome := UnitOutcome{Factor: unit.Factor, Metric: unit.Metric}
			analysis, err := s.AnalyzeFactor(unit.Factor, unit.Samples, req.Method, req.Mode, req.Alpha)
			if err != nil {
				outcome.FailureCode = errors.GetCode(err)
				outcome.FailureNote = err.Error()
				s.logger.Warn("unit %s/%s failed: %v", unit.Factor, unit.Metric, err)
			} else {
				outcome.Analysis = analysis
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "batch cancelled")
	}

	result := &BatchOutcome{Manifest: manifest, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Analysis == nil {
			manifest.UnitsFailed++
			manifest.FailureCodes[o.FailureCode]++
			continue
		}
		manifest.UnitsOK++
		a := o.Analysis
		for _, name := range a.Verdicts.Groups {
			result.Normality = append(result.Normality,
				domain.NewNormalityRecord(a.AnalysisID, o.Metric, name, req.Alpha, a.Verdicts.PerGroup[name]))
		}
		result.Omnibus = append(result.Omnibus, domain.OmnibusRecord{
			AnalysisID:  a.AnalysisID,
			Factor:      a.Factor,
			Method:      a.Omnibus.Method,
			Groups:      len(a.Omnibus.Groups),
			Statistic:   a.Omnibus.Statistic,
			PValue:      a.Omnibus.PValue,
			Alpha:       a.Omnibus.Alpha,
			Significant: a.Omnibus.Significant,
		})
		for _, c := range a.PostHoc {
			result.PostHoc = append(result.PostHoc, domain.NewPostHocRecord(a.AnalysisID, a.Factor, c))
		}
	}
	manifest.RuntimeMs = time.Since(start).Milliseconds()

	if s.ledger != nil {
		if err := s.persist(ctx, result); err != nil {
			return nil, errors.Wrap(err, "failed to persist batch results")
		}
	}

	s.logger.Info("batch %s: %d ok, %d failed, %dms",
		runID, manifest.UnitsOK, manifest.UnitsFailed, manifest.RuntimeMs)
	return result, nil
}

func (s *AnalysisService) persist(ctx context.Context, out *BatchOutcome) error {
	runID := out.Manifest.RunID.String()
	if err := s.ledger.StoreManifest(ctx, *out.Manifest); err != nil {
		return err
	}
	if err := s.ledger.StoreNormality(ctx, runID, out.Normality); err != nil {
		return err
	}
	if err := s.ledger.StoreOmnibus(ctx, runID, out.Omnibus); err != nil {
		return err
	}
	return s.ledger.StorePostHoc(ctx, runID, out.PostHoc)
}
