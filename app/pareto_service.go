package app

import (
	"sort"

	"evosweep/domain/pareto"
	"evosweep/internal"
	"evosweep/internal/errors"
)

// ParetoService pools replicate solution sets, extracts fronts and ranks
// configurations by hypervolume.
type ParetoService struct {
	logger *internal.Logger
}

// NewParetoService creates the Pareto service
func NewParetoService(logger *internal.Logger) *ParetoService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ParetoService{logger: logger.Named("pareto")}
}

// Partition splits one solution set into front and remainder, with the front
// sorted by ascending F1 for stable output.
func (s *ParetoService) Partition(solutions []pareto.Solution) (pareto.Partition, error) {
	if len(solutions) == 0 {
		return pareto.Partition{}, errors.InvalidInput("solution set is empty")
	}
	p := pareto.Extract(solutions)
	pareto.SortByF1(p.NonDominated)
	return p, nil
}

// MergeAndPartition pools the replicate sets of one configuration and
// partitions the pooled set. Points dominated within their own replicate but
// not by any pooled point end up on the merged front.
func (s *ParetoService) MergeAndPartition(replicates ...[]pareto.Solution) (pareto.Partition, error) {
	return s.Partition(pareto.Merge(replicates...))
}

// ConfigRanking is one configuration's hypervolume standing
type ConfigRanking struct {
	Config      string  `json:"config"`
	Hypervolume float64 `json:"hypervolume"`
	FrontSize   int     `json:"front_size"`
	Rank        int     `json:"rank"`
}

// RankByHypervolume partitions every configuration's pooled solutions and
// orders configurations by descending merged-front hypervolume. Ties keep
// lexicographic config order so repeated runs rank identically.
func (s *ParetoService) RankByHypervolume(pooled map[string][]pareto.Solution, ref pareto.Solution) ([]ConfigRanking, map[string]pareto.Partition, error) {
	if len(pooled) == 0 {
		return nil, nil, errors.InvalidInput("no configurations to rank")
	}

	fronts := make(map[string]pareto.Partition, len(pooled))
	rankings := make([]ConfigRanking, 0, len(pooled))
	for config, solutions := range pooled {
		p, err := s.Partition(solutions)
		if err != nil {
			s.logger.Warn("configuration %s skipped: %v", config, err)
			continue
		}
		fronts[config] = p
		rankings = append(rankings, ConfigRanking{
			Config:      config,
			Hypervolume: pareto.Hypervolume(p.NonDominated, ref),
			FrontSize:   len(p.NonDominated),
		})
	}
	if len(rankings) == 0 {
		return nil, nil, errors.InvalidInput("no configuration had a usable solution set")
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Hypervolume != rankings[j].Hypervolume {
			return rankings[i].Hypervolume > rankings[j].Hypervolume
		}
		return rankings[i].Config < rankings[j].Config
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	s.logger.Info("ranked %d configurations, best=%s (hv=%.4f)",
		len(rankings), rankings[0].Config, rankings[0].Hypervolume)
	return rankings, fronts, nil
}
