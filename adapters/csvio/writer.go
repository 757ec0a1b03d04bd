package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	domain "evosweep/domain/stats"
	"evosweep/internal/errors"
)

// ResultWriter dumps the flat record tables as CSV files, one file per
// table, for downstream plotting scripts.
type ResultWriter struct {
	dir string
}

// NewResultWriter writes result tables under dir
func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

// WriteNormality writes the normality record table
func (w *ResultWriter) WriteNormality(records []domain.NormalityRecord) error {
	rows := [][]string{{"analysis_id", "metric_name", "group_name", "method", "n", "mean", "std",
		"statistic", "p_value", "critical_value", "alpha", "is_normal", "note"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.AnalysisID.String(), r.MetricName, r.GroupName.String(), string(r.Method),
			strconv.Itoa(r.N), ftoa(r.Mean), ftoa(r.Std),
			ftoa(r.Statistic), ftoa(r.PValue), ftoa(r.CriticalValue), ftoa(r.Alpha),
			strconv.FormatBool(r.IsNormal), r.Note,
		})
	}
	return w.writeFile("normality_results.csv", rows)
}

// WriteOmnibus writes the omnibus record table
func (w *ResultWriter) WriteOmnibus(records []domain.OmnibusRecord) error {
	rows := [][]string{{"analysis_id", "factor", "method", "groups", "statistic", "p_value",
		"alpha", "significant", "note"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.AnalysisID.String(), r.Factor, string(r.Method), strconv.Itoa(r.Groups),
			ftoa(r.Statistic), ftoa(r.PValue), ftoa(r.Alpha),
			strconv.FormatBool(r.Significant), r.Note,
		})
	}
	return w.writeFile("omnibus_results.csv", rows)
}

// WritePostHoc writes the pairwise comparison table
func (w *ResultWriter) WritePostHoc(records []domain.PostHocRecord) error {
	rows := [][]string{{"analysis_id", "factor", "group_a", "group_b", "method", "statistic",
		"raw_p_value", "corrected_p_value", "significant", "correction_method", "note"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.AnalysisID.String(), r.Factor, r.GroupA.String(), r.GroupB.String(), string(r.Method),
			ftoa(r.Statistic), ftoa(r.RawPValue), ftoa(r.CorrectedPValue),
			strconv.FormatBool(r.Significant), string(r.Correction), r.Note,
		})
	}
	return w.writeFile("posthoc_results.csv", rows)
}

func (w *ResultWriter) writeFile(name string, rows [][]string) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create result directory %s", w.dir)
	}
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	return nil
}

// ftoa keeps full float precision in CSV cells
func ftoa(v float64) string {
	return fmt.Sprintf("%g", v)
}
