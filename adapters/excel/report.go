// Package excel exports a batch run as an xlsx workbook, one sheet per
// result family, for researchers who read results in a spreadsheet.
package excel

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"evosweep/internal/errors"
	"evosweep/ports"
)

// ReportWriter renders a ports.Report into a workbook
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteReport writes the workbook to path
func (w *ReportWriter) WriteReport(path string, report ports.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeManifest(f, report); err != nil {
		return err
	}
	if err := w.writeNormality(f, report); err != nil {
		return err
	}
	if err := w.writeOmnibus(f, report); err != nil {
		return err
	}
	if err := w.writePostHoc(f, report); err != nil {
		return err
	}
	if err := w.writeFronts(f, report); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on the manifest.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return errors.Wrap(err, "failed to delete default sheet")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save report to %s", path)
	}
	return nil
}

func (w *ReportWriter) writeManifest(f *excelize.File, report ports.Report) error {
	m := report.Manifest
	rows := [][]interface{}{
		{"run_id", m.RunID.String()},
		{"config_hash", m.ConfigHash.String()},
		{"alpha", m.Alpha},
		{"units_total", m.UnitsTotal},
		{"units_ok", m.UnitsOK},
		{"units_failed", m.UnitsFailed},
		{"runtime_ms", m.RuntimeMs},
		{"created_at", m.CreatedAt.Time().Format("2006-01-02 15:04:05 MST")},
	}
	for kind, count := range m.FailureCodes {
		rows = append(rows, []interface{}{"failures." + string(kind), count})
	}
	return writeSheet(f, "Manifest", nil, rows)
}

func (w *ReportWriter) writeNormality(f *excelize.File, report ports.Report) error {
	header := []interface{}{"analysis_id", "metric", "group", "method", "n", "mean", "std",
		"statistic", "p_value", "alpha", "is_normal", "note"}
	rows := make([][]interface{}, 0, len(report.Normality))
	for _, r := range report.Normality {
		rows = append(rows, []interface{}{
			r.AnalysisID.String(), r.MetricName, r.GroupName.String(), string(r.Method),
			r.N, cell(r.Mean), cell(r.Std), cell(r.Statistic), cell(r.PValue),
			r.Alpha, r.IsNormal, r.Note,
		})
	}
	return writeSheet(f, "Normality", header, rows)
}

func (w *ReportWriter) writeOmnibus(f *excelize.File, report ports.Report) error {
	header := []interface{}{"analysis_id", "factor", "method", "groups", "statistic",
		"p_value", "alpha", "significant", "note"}
	rows := make([][]interface{}, 0, len(report.Omnibus))
	for _, r := range report.Omnibus {
		rows = append(rows, []interface{}{
			r.AnalysisID.String(), r.Factor, string(r.Method), r.Groups,
			cell(r.Statistic), cell(r.PValue), r.Alpha, r.Significant, r.Note,
		})
	}
	return writeSheet(f, "Omnibus", header, rows)
}

func (w *ReportWriter) writePostHoc(f *excelize.File, report ports.Report) error {
	header := []interface{}{"analysis_id", "factor", "group_a", "group_b", "method",
		"statistic", "raw_p", "corrected_p", "significant", "correction", "note"}
	rows := make([][]interface{}, 0, len(report.PostHoc))
	for _, r := range report.PostHoc {
		rows = append(rows, []interface{}{
			r.AnalysisID.String(), r.Factor, r.GroupA.String(), r.GroupB.String(), string(r.Method),
			cell(r.Statistic), cell(r.RawPValue), cell(r.CorrectedPValue),
			r.Significant, string(r.Correction), r.Note,
		})
	}
	return writeSheet(f, "PostHoc", header, rows)
}

func (w *ReportWriter) writeFronts(f *excelize.File, report ports.Report) error {
	if len(report.Fronts) == 0 {
		return nil
	}
	header := []interface{}{"config", "f1", "f2", "dominated"}
	configs := make([]string, 0, len(report.Fronts))
	for c := range report.Fronts {
		configs = append(configs, c)
	}
	sort.Strings(configs)

	var rows [][]interface{}
	for _, c := range configs {
		p := report.Fronts[c]
		for _, s := range p.NonDominated {
			rows = append(rows, []interface{}{c, s.F1, s.F2, false})
		}
		for _, s := range p.Dominated {
			rows = append(rows, []interface{}{c, s.F1, s.F2, true})
		}
	}
	return writeSheet(f, "Fronts", header, rows)
}

// writeSheet creates one sheet with an optional header row
func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrapf(err, "failed to create sheet %s", name)
	}
	row := 1
	if header != nil {
		if err := setRow(f, name, row, header); err != nil {
			return err
		}
		row++
	}
	for _, values := range rows {
		if err := setRow(f, name, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cellName, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName, v); err != nil {
			return errors.Wrapf(err, "failed to set %s!%s", sheet, cellName)
		}
	}
	return nil
}

// cell renders NaN statistics as an empty string; xlsx has no NaN literal
func cell(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}

var _ ports.ReportWriterPort = (*ReportWriter)(nil)

// Filename is the default workbook name
const Filename = "analysis_report.xlsx"

// DefaultPath joins dir and the default workbook name
func DefaultPath(dir string) string {
	return fmt.Sprintf("%s/%s", dir, Filename)
}
