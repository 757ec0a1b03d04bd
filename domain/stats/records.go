package stats

import (
	"encoding/json"

	"evosweep/domain/core"
)

// ============================================================================
// FLAT RESULT RECORDS (the wire/CSV schema consumed by reporting)
// ============================================================================

// NormalityRecord is one row of the normality result table
type NormalityRecord struct {
	AnalysisID    core.AnalysisID `json:"analysis_id" db:"analysis_id"`
	MetricName    string          `json:"metric_name" db:"metric_name"`
	GroupName     core.GroupName  `json:"group_name" db:"group_name"`
	Method        NormalityMethod `json:"method" db:"method"`
	N             int             `json:"n" db:"n"`
	Mean          float64         `json:"mean" db:"mean"`
	Std           float64         `json:"std" db:"std"`
	Statistic     float64         `json:"statistic" db:"statistic"`
	PValue        float64         `json:"p_value" db:"p_value"`
	CriticalValue float64         `json:"critical_value,omitempty" db:"critical_value"`
	Alpha         float64         `json:"alpha" db:"alpha"`
	IsNormal      bool            `json:"is_normal" db:"is_normal"`
	Note          string          `json:"note,omitempty" db:"note"`
}

// NewNormalityRecord flattens a verdict into a record row
func NewNormalityRecord(analysisID core.AnalysisID, metric string, group core.GroupName, alpha float64, v NormalityVerdict) NormalityRecord {
	return NormalityRecord{
		AnalysisID:    analysisID,
		MetricName:    metric,
		GroupName:     group,
		Method:        v.Method,
		N:             v.N,
		Mean:          v.Mean,
		Std:           v.Std,
		Statistic:     v.Statistic,
		PValue:        v.PValue,
		CriticalValue: v.CriticalValue,
		Alpha:         alpha,
		IsNormal:      v.IsNormal,
		Note:          v.Note,
	}
}

// MarshalJSON renders NaN statistics as null, matching the verdict encoding
func (r NormalityRecord) MarshalJSON() ([]byte, error) {
	type plain NormalityRecord
	return json.Marshal(struct {
		plain
		Statistic     *float64 `json:"statistic"`
		PValue        *float64 `json:"p_value"`
		CriticalValue *float64 `json:"critical_value,omitempty"`
	}{
		plain:         plain(r),
		Statistic:     nanToNull(r.Statistic),
		PValue:        nanToNull(r.PValue),
		CriticalValue: nanToNull(r.CriticalValue),
	})
}

// OmnibusRecord is one row of the omnibus result table
type OmnibusRecord struct {
	AnalysisID  core.AnalysisID `json:"analysis_id" db:"analysis_id"`
	Factor      string          `json:"factor" db:"factor"`
	Method      OmnibusMethod   `json:"method" db:"method"`
	Groups      int             `json:"groups" db:"groups"`
	Statistic   float64         `json:"statistic" db:"statistic"`
	PValue      float64         `json:"p_value" db:"p_value"`
	Alpha       float64         `json:"alpha" db:"alpha"`
	Significant bool            `json:"significant" db:"significant"`
	Note        string          `json:"note,omitempty" db:"note"`
}

// PostHocRecord is one row of the pairwise post-hoc table
type PostHocRecord struct {
	AnalysisID      core.AnalysisID  `json:"analysis_id" db:"analysis_id"`
	Factor          string           `json:"factor" db:"factor"`
	GroupA          core.GroupName   `json:"group_a" db:"group_a"`
	GroupB          core.GroupName   `json:"group_b" db:"group_b"`
	Method          PairwiseMethod   `json:"method" db:"method"`
	Statistic       float64          `json:"statistic" db:"statistic"`
	RawPValue       float64          `json:"raw_p_value" db:"raw_p_value"`
	CorrectedPValue float64          `json:"corrected_p_value" db:"corrected_p_value"`
	Significant     bool             `json:"significant" db:"significant"`
	Correction      CorrectionMethod `json:"correction_method" db:"correction_method"`
	Note            string           `json:"note,omitempty" db:"note"`
}

// NewPostHocRecord flattens a pairwise comparison into a record row
func NewPostHocRecord(analysisID core.AnalysisID, factor string, c PairwiseComparison) PostHocRecord {
	return PostHocRecord{
		AnalysisID:      analysisID,
		Factor:          factor,
		GroupA:          c.GroupA,
		GroupB:          c.GroupB,
		Method:          c.Method,
		Statistic:       c.Statistic,
		RawPValue:       c.RawPValue,
		CorrectedPValue: c.CorrectedPValue,
		Significant:     c.Significant,
		Correction:      c.Correction,
		Note:            c.Note,
	}
}

// MarshalJSON renders NaN statistics of failed pairs as null
func (r PostHocRecord) MarshalJSON() ([]byte, error) {
	type plain PostHocRecord
	return json.Marshal(struct {
		plain
		Statistic       *float64 `json:"statistic"`
		RawPValue       *float64 `json:"raw_p_value"`
		CorrectedPValue *float64 `json:"corrected_p_value"`
	}{
		plain:           plain(r),
		Statistic:       nanToNull(r.Statistic),
		RawPValue:       nanToNull(r.RawPValue),
		CorrectedPValue: nanToNull(r.CorrectedPValue),
	})
}

// ============================================================================
// RUN MANIFEST (audit trail for a batch run)
// ============================================================================

// RunManifest captures the specification and outcome counts of one batch run.
// FailureCodes is keyed by the structured error code of each failed unit.
type RunManifest struct {
	RunID        core.RunID      `json:"run_id"`
	ConfigHash   core.ConfigHash `json:"config_hash"`
	Alpha        float64         `json:"alpha"`
	UnitsTotal   int             `json:"units_total"`
	UnitsOK      int             `json:"units_ok"`
	UnitsFailed  int             `json:"units_failed"`
	FailureCodes map[string]int  `json:"failure_codes"`
	RuntimeMs    int64           `json:"runtime_ms"`
	CreatedAt    core.Timestamp  `json:"created_at"`
}

// NewRunManifest creates a manifest with counters zeroed
func NewRunManifest(runID core.RunID, configHash core.ConfigHash, alpha float64) *RunManifest {
	return &RunManifest{
		RunID:        runID,
		ConfigHash:   configHash,
		Alpha:        alpha,
		FailureCodes: make(map[string]int),
		CreatedAt:    core.Now(),
	}
}
