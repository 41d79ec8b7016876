package app

import (
	"fmt"

	"go.uber.org/zap"

	"schedbench/internal/domain"
	"schedbench/pkg/accum"
	"schedbench/pkg/sampler"
	"schedbench/pkg/schedule"
)

type HistogramAccumulator struct {
	logger *zap.Logger
	config domain.HistogramConfig
}

func NewHistogramAccumulator(logger *zap.Logger, config domain.HistogramConfig) *HistogramAccumulator {
	return &HistogramAccumulator{
		logger: logger.With(zap.String("pipeline", domain.PipelineHistogram)),
		config: config,
	}
}

func (a *HistogramAccumulator) Units() int {
	return a.config.Samples
}

func mergeHistogram(dst **domain.Histogram, src *domain.Histogram) error {
	return (*dst).MergeFrom(src)
}

// Run draws config.Samples values with threads workers and returns the
// merged histogram in the result's Buckets.
func (a *HistogramAccumulator) Run(threads int, policy schedule.Policy) (domain.RunResult, error) {
	cfg := a.config
	buckets := cfg.Max + 1

	shared := accum.NewShared(domain.NewHistogram(buckets), mergeHistogram)
	plan := schedule.NewPlan(policy, cfg.Samples, threads)

	err := forkJoin(a.logger, threads, func(worker int) error {
		gen := sampler.ForWorker(cfg.Max, cfg.Seed, worker)
		local := domain.NewHistogram(buckets)

		for {
			batch, ok := plan.Next(worker)
			if !ok {
				break
			}
			for range batch.Len() {
				local.Add(gen.Next())
			}
		}

		return shared.Merge(local)
	})
	if err != nil {
		return domain.RunResult{}, err
	}

	hist := shared.Value()
	if total := hist.Total(); total != int64(cfg.Samples) {
		return domain.RunResult{}, fmt.Errorf("%w: got %d, want %d", domain.ErrSampleMismatch, total, cfg.Samples)
	}

	a.logger.Debug("Histogram finished",
		zap.Int("threads", threads),
		zap.Stringer("policy", policy),
		zap.Int("claims", plan.Claims()),
		zap.Int("merges", shared.Merges()))

	return domain.RunResult{
		Pipeline: domain.PipelineHistogram,
		Threads:  threads,
		Policy:   policy,
		Units:    cfg.Samples,
		Claims:   plan.Claims(),
		Buckets:  hist.Counts,
	}, nil
}
