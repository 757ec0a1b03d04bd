package app

import (
	"context"
	"testing"

	"evosweep/domain/core"
	domain "evosweep/domain/stats"
	"evosweep/internal/errors"
	"evosweep/internal/testkit"
)

const alpha = 0.05

func group(t *testing.T, name string, values []float64) domain.Sample {
	t.Helper()
	s, err := domain.NewSample(core.GroupName(name), values)
	if err != nil {
		t.Fatalf("failed to build group %s: %v", name, err)
	}
	return s
}

func TestClassifyGroupsEmptyInput(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	if _, err := svc.ClassifyGroups(nil, domain.MethodShapiroWilk, alpha); err == nil {
		t.Fatalf("empty input must be an error, not an implicit verdict")
	}
	onlyEmpty := []domain.Sample{{Name: "empty"}}
	if _, err := svc.ClassifyGroups(onlyEmpty, domain.MethodShapiroWilk, alpha); err == nil {
		t.Fatalf("groups with no valid sample must be an error")
	}
}

func TestClassifyGroupsUnknownMethod(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	groups := []domain.Sample{group(t, "a", []float64{1, 2, 3})}
	if _, err := svc.ClassifyGroups(groups, "bogus", alpha); err == nil {
		t.Fatalf("unknown method must be rejected")
	}
}

func TestClassifyGroupsAggregation(t *testing.T) {
	rng := testkit.NewRand(5)
	svc := NewAnalysisService(nil, nil)
	groups := []domain.Sample{
		testkit.Group("normal1", testkit.NormalSample(rng, 30, 0, 1)),
		testkit.Group("normal2", testkit.NormalSample(rng, 30, 0, 1)),
		group(t, "flat", []float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}),
	}
	verdicts, err := svc.ClassifyGroups(groups, domain.MethodShapiroWilk, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdicts.AllNormal {
		t.Fatalf("the degenerate group must break the conjunction")
	}
	if len(verdicts.Groups) != 3 || len(verdicts.PerGroup) != 3 {
		t.Fatalf("expected 3 verdicts, got %d/%d", len(verdicts.Groups), len(verdicts.PerGroup))
	}
	if flat := verdicts.PerGroup["flat"]; flat.Kind != domain.VerdictDegenerate {
		t.Fatalf("flat group must be degenerate, got %s", flat.Kind)
	}
}

func TestAnalyzeFactorEndToEnd(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	groups := []domain.Sample{
		group(t, "a", []float64{1, 2, 3, 4, 5, 6, 7, 8}),
		group(t, "b", []float64{10, 11, 12, 13, 14, 15, 16, 17}),
	}
	analysis, err := svc.AnalyzeFactor("mutation_rate", groups, domain.MethodShapiroWilk, GroupModeConjunction, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Omnibus == nil || !analysis.Omnibus.Significant {
		t.Fatalf("clearly separated groups must produce a significant omnibus result")
	}
	if len(analysis.PostHoc) != 1 {
		t.Fatalf("a significant 2-group comparison must yield 1 post-hoc pair, got %d", len(analysis.PostHoc))
	}
	if !analysis.PostHoc[0].Significant {
		t.Fatalf("the post-hoc pair must confirm the separation")
	}
	if analysis.AnalysisID.String() == "" {
		t.Fatalf("analysis must carry an ID")
	}
}

func TestAnalyzeFactorNoPostHocWithoutSignificance(t *testing.T) {
	shared := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	svc := NewAnalysisService(nil, nil)
	groups := []domain.Sample{group(t, "a", shared), group(t, "b", shared)}
	analysis, err := svc.AnalyzeFactor("seed", groups, domain.MethodShapiroWilk, GroupModeConjunction, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Omnibus.Significant {
		t.Fatalf("identical groups must not be significant")
	}
	if len(analysis.PostHoc) != 0 {
		t.Fatalf("post-hoc must only run after a significant omnibus result")
	}
}

func TestAnalyzeFactorSingleGroupFails(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	groups := []domain.Sample{group(t, "only", []float64{1, 2, 3, 4})}
	_, err := svc.AnalyzeFactor("f", groups, domain.MethodShapiroWilk, GroupModeConjunction, alpha)
	if err == nil {
		t.Fatalf("a single group must be an invalid comparison")
	}
	if errors.GetCode(err) != errors.CodeInvalidComparison {
		t.Fatalf("expected %s, got %s", errors.CodeInvalidComparison, errors.GetCode(err))
	}
}

func TestRunBatchMixedOutcomes(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	req := BatchRequest{
		Method: domain.MethodShapiroWilk,
		Mode:   GroupModeConjunction,
		Alpha:  alpha,
		Units: []AnalysisUnit{
			{
				Factor: "good",
				Metric: "hypervolume",
				Samples: []domain.Sample{
					group(t, "a", []float64{1, 2, 3, 4, 5, 6, 7, 8}),
					group(t, "b", []float64{10, 11, 12, 13, 14, 15, 16, 17}),
				},
			},
			{
				Factor:  "broken",
				Metric:  "hypervolume",
				Samples: []domain.Sample{group(t, "only", []float64{1, 2, 3})},
			},
		},
	}

	out, err := svc.RunBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("a failing unit must not abort the batch: %v", err)
	}
	if len(out.Outcomes) != 2 {
		t.Fatalf("every unit must report an outcome, got %d", len(out.Outcomes))
	}
	if out.Outcomes[0].Analysis == nil {
		t.Fatalf("good unit must succeed: %s", out.Outcomes[0].FailureNote)
	}
	if out.Outcomes[1].Analysis != nil || out.Outcomes[1].FailureCode == "" {
		t.Fatalf("broken unit must carry a failure code")
	}

	m := out.Manifest
	if m.UnitsTotal != 2 || m.UnitsOK != 1 || m.UnitsFailed != 1 {
		t.Fatalf("manifest counts wrong: total=%d ok=%d failed=%d", m.UnitsTotal, m.UnitsOK, m.UnitsFailed)
	}
	if m.ConfigHash.String() == "" {
		t.Fatalf("manifest must fingerprint the input configuration")
	}
	if len(out.Normality) != 2 {
		t.Fatalf("expected 2 normality records from the good unit, got %d", len(out.Normality))
	}
	if len(out.Omnibus) != 1 {
		t.Fatalf("expected 1 omnibus record, got %d", len(out.Omnibus))
	}
}

func TestRunBatchValidation(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	if _, err := svc.RunBatch(context.Background(), BatchRequest{Alpha: alpha}); err == nil {
		t.Fatalf("empty batch must be rejected")
	}
	bad := BatchRequest{
		Alpha: 1.5,
		Units: []AnalysisUnit{{Factor: "f", Samples: []domain.Sample{group(t, "a", []float64{1})}}},
	}
	if _, err := svc.RunBatch(context.Background(), bad); err == nil {
		t.Fatalf("alpha outside (0,1) must be rejected")
	}
}

func TestRunBatchDeterministicHash(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	build := func() BatchRequest {
		return BatchRequest{
			Method: domain.MethodShapiroWilk,
			Mode:   GroupModeConjunction,
			Alpha:  alpha,
			Units: []AnalysisUnit{{
				Factor: "f",
				Samples: []domain.Sample{
					group(t, "a", []float64{1, 2, 3, 4}),
					group(t, "b", []float64{5, 6, 7, 8}),
				},
			}},
		}
	}
	first, err := svc.RunBatch(context.Background(), build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RunBatch(context.Background(), build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Manifest.ConfigHash != second.Manifest.ConfigHash {
		t.Fatalf("same input must hash identically")
	}
	if first.Manifest.RunID == second.Manifest.RunID {
		t.Fatalf("each batch must get a fresh run ID")
	}
}

func TestMajorityModeOverridesConjunction(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	// Two perfectly normal-looking groups and one degenerate one: conjunction
	// fails, majority holds.
	shifted := make([]float64, 0, 30)
	for _, v := range testkit.BlomSample(30) {
		shifted = append(shifted, v+1)
	}
	groups := []domain.Sample{
		testkit.Group("n1", testkit.BlomSample(30)),
		testkit.Group("n2", shifted),
		group(t, "flat", []float64{4, 4, 4, 4, 4, 4, 4, 4, 4, 4}),
	}

	conj, err := svc.AnalyzeFactor("f", groups, domain.MethodShapiroWilk, GroupModeConjunction, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conj.Omnibus.Method != domain.MethodKruskalWallis {
		t.Fatalf("conjunction mode with a degenerate group must go non-parametric, got %s", conj.Omnibus.Method)
	}

	maj, err := svc.AnalyzeFactor("f", groups, domain.MethodShapiroWilk, GroupModeMajority, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maj.Omnibus.Method != domain.MethodANOVA {
		t.Fatalf("majority mode with 2 of 3 normal groups must go parametric, got %s", maj.Omnibus.Method)
	}
}
