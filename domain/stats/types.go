package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"evosweep/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Sample is a named group of real-valued observations. Callers filter empty
// groups before construction; Values must be non-empty when handed to a test.
type Sample struct {
	Name   core.GroupName `json:"name"`
	Values []float64      `json:"values"`
}

// NewSample creates a sample with validation
func NewSample(name core.GroupName, values []float64) (Sample, error) {
	if name == "" {
		return Sample{}, fmt.Errorf("sample name must be set")
	}
	if len(values) == 0 {
		return Sample{}, core.ErrEmptySample
	}
	return Sample{Name: name, Values: values}, nil
}

// N returns the number of observations
func (s Sample) N() int {
	return len(s.Values)
}

// DescriptiveStats contains per-group summary statistics, computed for every
// group regardless of which omnibus test ran so reports stay comparable.
type DescriptiveStats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"` // sample std (ddof=1)
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// ============================================================================
// NORMALITY VERDICTS (tagged variants, no optional-field ambiguity)
// ============================================================================

// NormalityMethod identifies the normality test that produced a verdict
type NormalityMethod string

const (
	MethodShapiroWilk       NormalityMethod = "shapiro_wilk"       // regression-type, n >= 3
	MethodKolmogorovSmirnov NormalityMethod = "kolmogorov_smirnov" // ECDF-based, n >= 3
	MethodAndersonDarling   NormalityMethod = "anderson_darling"   // tail-sensitive, n >= 8
)

// VerdictKind tags how a normality verdict was reached
type VerdictKind string

const (
	// VerdictOK means the test ran and produced a finite statistic.
	VerdictOK VerdictKind = "ok"
	// VerdictInsufficient means n was below the method's minimum.
	VerdictInsufficient VerdictKind = "insufficient_sample"
	// VerdictDegenerate means the sample had zero variance.
	VerdictDegenerate VerdictKind = "degenerate_sample"
	// VerdictFailed means the underlying numeric routine failed.
	VerdictFailed VerdictKind = "numeric_failure"
)

// NormalityVerdict is the outcome of classifying one sample.
// INVARIANTS:
// - Kind == VerdictOK  => Statistic and PValue are finite, Note is empty
// - Kind != VerdictOK  => Statistic and PValue are NaN, Note is set, IsNormal is false
type NormalityVerdict struct {
	Method        NormalityMethod `json:"method"`
	Kind          VerdictKind     `json:"kind"`
	Statistic     float64         `json:"statistic"`
	PValue        float64         `json:"p_value"`
	CriticalValue float64         `json:"critical_value,omitempty"` // critical-value-based methods only
	CriticalAlpha float64         `json:"critical_alpha,omitempty"` // tabulated level actually used
	IsNormal      bool            `json:"is_normal"`
	N             int             `json:"n"`
	Mean          float64         `json:"mean"`
	Std           float64         `json:"std"`
	Note          string          `json:"note,omitempty"`
}

// NewOKVerdict creates a verdict for a test that ran to completion
func NewOKVerdict(method NormalityMethod, statistic, pValue float64, isNormal bool, n int, mean, std float64) NormalityVerdict {
	return NormalityVerdict{
		Method:        method,
		Kind:          VerdictOK,
		Statistic:     statistic,
		PValue:        pValue,
		CriticalValue: math.NaN(),
		CriticalAlpha: math.NaN(),
		IsNormal:      isNormal,
		N:             n,
		Mean:          mean,
		Std:           std,
	}
}

// NewInsufficientVerdict marks a sample too small for the method
func NewInsufficientVerdict(method NormalityMethod, n, minimum int, mean, std float64) NormalityVerdict {
	return NormalityVerdict{
		Method:        method,
		Kind:          VerdictInsufficient,
		Statistic:     math.NaN(),
		PValue:        math.NaN(),
		CriticalValue: math.NaN(),
		CriticalAlpha: math.NaN(),
		IsNormal:      false,
		N:             n,
		Mean:          mean,
		Std:           std,
		Note:          fmt.Sprintf("insufficient sample size (n=%d < %d)", n, minimum),
	}
}

// NewDegenerateVerdict marks a zero-variance sample. A degenerate distribution
// is never classified as normal even though the statistic would be zero.
func NewDegenerateVerdict(method NormalityMethod, n int, mean float64) NormalityVerdict {
	return NormalityVerdict{
		Method:        method,
		Kind:          VerdictDegenerate,
		Statistic:     math.NaN(),
		PValue:        math.NaN(),
		CriticalValue: math.NaN(),
		CriticalAlpha: math.NaN(),
		IsNormal:      false,
		N:             n,
		Mean:          mean,
		Std:           0,
		Note:          "all values are identical (std=0)",
	}
}

// NewFailedVerdict converts a numeric failure into a verdict so batches never abort
func NewFailedVerdict(method NormalityMethod, n int, mean, std float64, cause error) NormalityVerdict {
	return NormalityVerdict{
		Method:        method,
		Kind:          VerdictFailed,
		Statistic:     math.NaN(),
		PValue:        math.NaN(),
		CriticalValue: math.NaN(),
		CriticalAlpha: math.NaN(),
		IsNormal:      false,
		N:             n,
		Mean:          mean,
		Std:           std,
		Note:          fmt.Sprintf("test failed: %v", cause),
	}
}

// Ran reports whether the test actually produced a statistic
func (v NormalityVerdict) Ran() bool {
	return v.Kind == VerdictOK
}

// nanToNull maps NaN onto a JSON null; encoding/json rejects NaN literals.
func nanToNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// MarshalJSON renders the NaN statistics of non-OK verdicts, and the unused
// critical values of the p-value-based methods, as null.
func (v NormalityVerdict) MarshalJSON() ([]byte, error) {
	type plain NormalityVerdict
	return json.Marshal(struct {
		plain
		Statistic     *float64 `json:"statistic"`
		PValue        *float64 `json:"p_value"`
		CriticalValue *float64 `json:"critical_value,omitempty"`
		CriticalAlpha *float64 `json:"critical_alpha,omitempty"`
	}{
		plain:         plain(v),
		Statistic:     nanToNull(v.Statistic),
		PValue:        nanToNull(v.PValue),
		CriticalValue: nanToNull(v.CriticalValue),
		CriticalAlpha: nanToNull(v.CriticalAlpha),
	})
}

// GroupVerdicts aggregates per-group normality verdicts for one factor
type GroupVerdicts struct {
	PerGroup   map[core.GroupName]NormalityVerdict `json:"per_group"`
	Groups     []core.GroupName                    `json:"groups"` // insertion order for stable output
	AllNormal  bool                                `json:"all_normal"`
	NormalVote int                                 `json:"normal_vote"` // groups classified normal
	Alpha      float64                             `json:"alpha"`
}

// MajorityNormal reports whether more groups were classified normal than not
func (g GroupVerdicts) MajorityNormal() bool {
	return g.NormalVote > len(g.Groups)-g.NormalVote
}

// ============================================================================
// OMNIBUS COMPARISON
// ============================================================================

// OmnibusMethod identifies the omnibus test across >= 2 groups
type OmnibusMethod string

const (
	MethodANOVA         OmnibusMethod = "anova_f"        // parametric one-way comparison of means
	MethodKruskalWallis OmnibusMethod = "kruskal_wallis" // rank-based comparison of medians
)

// OmnibusResult is the outcome of a single omnibus comparison.
// INVARIANTS:
// - len(Groups) >= 2
// - Significant == (PValue < Alpha)
type OmnibusResult struct {
	Method           OmnibusMethod                       `json:"method"`
	Statistic        float64                             `json:"statistic"`
	PValue           float64                             `json:"p_value"`
	Significant      bool                                `json:"significant"`
	Alpha            float64                             `json:"alpha"`
	Groups           []core.GroupName                    `json:"groups"`
	DescriptiveStats map[core.GroupName]DescriptiveStats `json:"descriptive_stats"`
}

// Validate checks the omnibus invariants
func (r OmnibusResult) Validate() error {
	if len(r.Groups) < 2 {
		return core.NewComparisonError(len(r.Groups))
	}
	if r.Significant != (r.PValue < r.Alpha) {
		return fmt.Errorf("significance flag inconsistent with p=%g alpha=%g", r.PValue, r.Alpha)
	}
	return nil
}

// ============================================================================
// POST-HOC COMPARISONS
// ============================================================================

// PairwiseMethod identifies the two-sample test used per pair
type PairwiseMethod string

const (
	MethodStudentT    PairwiseMethod = "student_t"      // parametric family
	MethodMannWhitney PairwiseMethod = "mann_whitney_u" // non-parametric family
)

// CorrectionMethod identifies the family-wise error correction
type CorrectionMethod string

const (
	CorrectionBonferroni CorrectionMethod = "bonferroni"
)

// PairwiseComparison is one post-hoc comparison between two groups.
// INVARIANTS (Bonferroni):
// - CorrectedPValue >= RawPValue
// - CorrectedPValue <= 1.0
// - Significant == (CorrectedPValue < Alpha)
type PairwiseComparison struct {
	GroupA          core.GroupName   `json:"group_a"`
	GroupB          core.GroupName   `json:"group_b"`
	Method          PairwiseMethod   `json:"method"`
	Statistic       float64          `json:"statistic"`
	RawPValue       float64          `json:"raw_p_value"`
	CorrectedPValue float64          `json:"corrected_p_value"`
	Significant     bool             `json:"significant"`
	Correction      CorrectionMethod `json:"correction_method"`
	Alpha           float64          `json:"alpha"`
	Note            string           `json:"note,omitempty"`
}

// MarshalJSON renders the NaN statistics of failed comparisons as null
func (c PairwiseComparison) MarshalJSON() ([]byte, error) {
	type plain PairwiseComparison
	return json.Marshal(struct {
		plain
		Statistic       *float64 `json:"statistic"`
		RawPValue       *float64 `json:"raw_p_value"`
		CorrectedPValue *float64 `json:"corrected_p_value"`
	}{
		plain:           plain(c),
		Statistic:       nanToNull(c.Statistic),
		RawPValue:       nanToNull(c.RawPValue),
		CorrectedPValue: nanToNull(c.CorrectedPValue),
	})
}

// NPairs returns the number of unordered pairs for k groups
func NPairs(k int) int {
	return k * (k - 1) / 2
}

// BonferroniCorrect applies the Bonferroni correction to a raw p-value.
// The corrected p-value multiplied form and the alpha/nPairs form are
// equivalent; the implementation uses the corrected p-value consistently.
func BonferroniCorrect(rawP float64, nPairs int) float64 {
	if nPairs <= 0 {
		return rawP
	}
	return math.Min(rawP*float64(nPairs), 1.0)
}
