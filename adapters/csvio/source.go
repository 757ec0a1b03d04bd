// Package csvio loads optimizer experiment output from disk. The expected
// layout is one directory per parameter configuration under a common root,
// each holding the CSV files of that configuration's replicate runs.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"evosweep/domain/core"
	"evosweep/domain/pareto"
	domain "evosweep/domain/stats"
	"evosweep/internal"
	"evosweep/internal/errors"
)

// ExperimentSource reads per-configuration sample groups and solution sets
// from a directory tree. Malformed rows are skipped with a warning; a file
// that yields no usable row at all is an error.
type ExperimentSource struct {
	root   string
	logger *internal.Logger
}

// NewExperimentSource creates a source rooted at dir
func NewExperimentSource(dir string, logger *internal.Logger) *ExperimentSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ExperimentSource{root: dir, logger: logger.Named("experiments")}
}

// configDirs lists the per-configuration subdirectories in sorted order
func (s *ExperimentSource) configDirs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read experiment root %s", s.root)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	if len(dirs) == 0 {
		return nil, errors.NotFound("configuration directories under " + s.root)
	}
	return dirs, nil
}

// LoadMetricGroups pools the named metric column from every replicate file of
// each configuration into one sample per configuration.
func (s *ExperimentSource) LoadMetricGroups(metric string) ([]domain.Sample, error) {
	dirs, err := s.configDirs()
	if err != nil {
		return nil, err
	}

	var samples []domain.Sample
	for _, dir := range dirs {
		values, err := s.loadColumn(filepath.Join(s.root, dir), metric)
		if err != nil {
			return nil, errors.Wrapf(err, "configuration %s", dir)
		}
		if len(values) == 0 {
			s.logger.Warn("configuration %s has no %q values, skipping", dir, metric)
			continue
		}
		name, err := core.ParseGroupName(dir)
		if err != nil {
			return nil, err
		}
		sample, err := domain.NewSample(name, values)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// loadColumn collects the metric column across every CSV file in dir
func (s *ExperimentSource) loadColumn(dir, metric string) ([]float64, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var values []float64
	for _, file := range files {
		cols, err := readColumns(file)
		if err != nil {
			return nil, err
		}
		col, ok := cols[strings.ToLower(metric)]
		if !ok {
			continue // replicate file for a different metric family
		}
		values = append(values, col...)
	}
	return values, nil
}

// LoadFronts pools the (f1, f2) rows of every replicate file of each
// configuration into one flat solution set per configuration.
func (s *ExperimentSource) LoadFronts() (map[string][]pareto.Solution, error) {
	dirs, err := s.configDirs()
	if err != nil {
		return nil, err
	}

	fronts := make(map[string][]pareto.Solution, len(dirs))
	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(s.root, dir, "*.csv"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)

		var solutions []pareto.Solution
		for _, file := range files {
			cols, err := readColumns(file)
			if err != nil {
				return nil, errors.Wrapf(err, "configuration %s", dir)
			}
			f1, ok1 := cols["f1"]
			f2, ok2 := cols["f2"]
			if !ok1 || !ok2 {
				continue
			}
			if len(f1) != len(f2) {
				s.logger.Warn("%s: f1/f2 column length mismatch (%d vs %d), skipping file", file, len(f1), len(f2))
				continue
			}
			for i := range f1 {
				solutions = append(solutions, pareto.Solution{F1: f1[i], F2: f2[i]})
			}
		}
		if len(solutions) > 0 {
			fronts[dir] = solutions
		} else {
			s.logger.Warn("configuration %s has no front rows, skipping", dir)
		}
	}
	if len(fronts) == 0 {
		return nil, errors.NotFound("front data under " + s.root)
	}
	return fronts, nil
}

// readColumns parses one CSV file into named numeric columns keyed by the
// lowercased header. Non-numeric cells are skipped with a warning so a stray
// row never poisons a whole replicate.
func readColumns(path string) (map[string][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read header of %s", path)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(map[string][]float64, len(header))
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			internal.DefaultLogger.Warn("%s line %d: %v, row skipped", path, line, err)
			continue
		}
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				internal.DefaultLogger.Warn("%s line %d column %s: not a number (%q), cell skipped",
					path, line, header[i], cell)
				continue
			}
			cols[header[i]] = append(cols[header[i]], v)
		}
	}
	return cols, nil
}
