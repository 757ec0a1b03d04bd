package app

import (
	"sort"
	"strings"
	"unicode"

	"evosweep/adapters/stats/describe"
	"evosweep/domain/core"
	domain "evosweep/domain/stats"
	"evosweep/internal/errors"
)

// Configuration names follow the sweep convention of underscore-joined
// factor tokens, a letter prefix followed by the level, e.g.
// "pc09_pm01_pop100" carries pc=09, pm=01, pop=100.

// ParseFactors splits a configuration name into factor levels. Tokens
// without a letter prefix or a level are ignored.
func ParseFactors(config string) map[string]string {
	factors := make(map[string]string)
	for _, token := range strings.Split(config, "_") {
		cut := -1
		for i, r := range token {
			if unicode.IsDigit(r) {
				cut = i
				break
			}
		}
		if cut <= 0 {
			continue
		}
		factors[token[:cut]] = token[cut:]
	}
	return factors
}

// BuildFactorUnits regroups per-configuration samples into one analysis unit
// per factor, pooling the observations of every configuration that shares a
// level. The full per-configuration comparison is always included as the
// first unit. Factors missing from a configuration name are skipped for that
// configuration.
func BuildFactorUnits(metric string, samples []domain.Sample, factors []string) ([]AnalysisUnit, error) {
	if len(samples) == 0 {
		return nil, errors.InvalidInput("no samples to group")
	}

	units := []AnalysisUnit{{Factor: "configuration", Metric: metric, Samples: samples}}

	for _, factor := range factors {
		pooled := make(map[string][]float64)
		var order []string
		for _, s := range samples {
			level, ok := ParseFactors(s.Name.String())[factor]
			if !ok {
				continue
			}
			if _, seen := pooled[level]; !seen {
				order = append(order, level)
			}
			pooled[level] = append(pooled[level], s.Values...)
		}
		if len(pooled) < 2 {
			continue // nothing to compare on this factor
		}
		sort.Strings(order)

		unit := AnalysisUnit{Factor: factor, Metric: metric}
		for _, level := range order {
			sample, err := domain.NewSample(core.GroupName(factor+"="+level), pooled[level])
			if err != nil {
				return nil, err
			}
			unit.Samples = append(unit.Samples, sample)
		}
		units = append(units, unit)
	}
	return units, nil
}

// GroupRanking is one group's standing by mean metric value
type GroupRanking struct {
	Group core.GroupName `json:"group"`
	Mean  float64        `json:"mean"`
	N     int            `json:"n"`
	Rank  int            `json:"rank"`
}

// RankGroupsByMean orders sample groups by descending mean, the winner-picking
// step after the hypothesis tests have established that differences are real.
// Ties keep lexicographic group order.
func RankGroupsByMean(samples []domain.Sample) ([]GroupRanking, error) {
	rankings := make([]GroupRanking, 0, len(samples))
	for _, s := range samples {
		if s.N() == 0 {
			continue
		}
		mean, _ := describe.MeanStd(s.Values)
		rankings = append(rankings, GroupRanking{Group: s.Name, Mean: mean, N: s.N()})
	}
	if len(rankings) == 0 {
		return nil, errors.InvalidInput("no non-empty groups to rank")
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Mean != rankings[j].Mean {
			return rankings[i].Mean > rankings[j].Mean
		}
		return rankings[i].Group < rankings[j].Group
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}
