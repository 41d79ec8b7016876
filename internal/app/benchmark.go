package app

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schedbench/internal/domain"
	"schedbench/pkg/schedule"
)

type runFunc func(threads int, policy schedule.Policy) (domain.RunResult, error)

// Bench runs the configured sweeps one entry at a time.
type Bench struct {
	logger   *zap.Logger
	config   *domain.Config
	writer   domain.ImageWriter
	reader   domain.ImageReader
	reporter domain.Reporter
}

func NewBench(logger *zap.Logger, config *domain.Config, writer domain.ImageWriter,
	reader domain.ImageReader, reporter domain.Reporter) *Bench {
	return &Bench{
		logger:   logger,
		config:   config,
		writer:   writer,
		reader:   reader,
		reporter: reporter,
	}
}

// Run executes every enabled pipeline sweep and reports it.
func (b *Bench) Run() error {
	if b.config.Histogram.Enabled {
		runs, err := b.SweepHistogram()
		if err != nil {
			return err
		}
		if err := b.reporter.ReportRuns("Histogram", runs); err != nil {
			return err
		}
	}

	if b.config.Mandelbrot.Enabled {
		runs, err := b.SweepMandelbrot()
		if err != nil {
			return err
		}
		if err := b.reporter.ReportRuns("Mandelbrot", runs); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bench) SweepHistogram() ([]domain.RunResult, error) {
	acc := NewHistogramAccumulator(b.logger, b.config.Histogram)

	return b.sweep(domain.PipelineHistogram, b.config.Histogram.Policies,
		func(threads int, policy schedule.Policy) (domain.RunResult, error) {
			return acc.Run(threads, policy)
		},
		func(res domain.RunResult) error {
			return b.reporter.ReportHistogram(res)
		})
}

func (b *Bench) SweepMandelbrot() ([]domain.RunResult, error) {
	cfg := b.config.Mandelbrot
	renderer := NewMandelbrotRenderer(b.logger, cfg)

	var all []domain.RunResult
	for _, policy := range cfg.Policies {
		// сохраняем только изображение последнего запуска политики
		var last *domain.Image
		runs, err := b.sweep(domain.PipelineMandelbrot, []schedule.Policy{policy},
			func(threads int, policy schedule.Policy) (domain.RunResult, error) {
				res, img, err := renderer.Render(threads, policy)
				last = img
				return res, err
			}, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, runs...)

		if last == nil {
			continue
		}
		if err := b.checkReference(last); err != nil {
			return nil, err
		}
		if err := b.saveImage(policy, last); err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (b *Bench) sweep(pipeline string, policies []schedule.Policy, run runFunc,
	after func(domain.RunResult) error) ([]domain.RunResult, error) {
	var results []domain.RunResult

	for _, policy := range policies {
		for _, threads := range b.config.Threads {
			res, err := b.timed(threads, policy, run)
			if err != nil {
				return nil, fmt.Errorf("%s %s threads=%d: %w", pipeline, policy, threads, err)
			}

			b.logger.Info("Run completed",
				zap.String("id", res.ID.String()),
				zap.String("pipeline", pipeline),
				zap.Stringer("policy", policy),
				zap.Int("threads", threads),
				zap.Duration("elapsed", res.Elapsed),
				zap.Float64("throughput", res.Throughput()),
				zap.Int64("inside", res.Inside))

			if after != nil {
				if err := after(res); err != nil {
					return nil, err
				}
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// timed runs one sweep entry to completion and stamps it.
func (b *Bench) timed(threads int, policy schedule.Policy, run runFunc) (domain.RunResult, error) {
	if b.config.PinProcs {
		prev := runtime.GOMAXPROCS(threads)
		defer runtime.GOMAXPROCS(prev)
	}

	start := time.Now()
	res, err := run(threads, policy)
	elapsed := time.Since(start)
	if err != nil {
		return domain.RunResult{}, err
	}

	res.ID = uuid.New()
	res.Elapsed = elapsed
	return res, nil
}

func (b *Bench) saveImage(policy schedule.Policy, img *domain.Image) error {
	dir := b.config.Mandelbrot.OutputDir
	if dir == "" || b.writer == nil {
		return nil
	}

	filename := filepath.Join(dir, fmt.Sprintf("mandelbrot_%s.ppm", policy.Slug()))
	if err := b.writer.WriteImage(filename, img); err != nil {
		b.logger.Error("Failed to write image", zap.String("file", filename), zap.Error(err))
		return err
	}
	b.logger.Info("Successfully written image", zap.String("file", filename))
	return nil
}

func (b *Bench) checkReference(img *domain.Image) error {
	path := b.config.Mandelbrot.Reference
	if path == "" || b.reader == nil {
		return nil
	}

	ref, err := b.reader.ReadImage(path)
	if err != nil {
		return fmt.Errorf("read reference %s: %w", path, err)
	}
	if err := CompareMembership(img, ref); err != nil {
		return fmt.Errorf("reference %s: %w", path, err)
	}
	b.logger.Info("Membership matches reference", zap.String("file", path))
	return nil
}

// CompareMembership checks that two images mark the same pixels as inside
// the set. Worker tints are ignored.
func CompareMembership(got, want *domain.Image) error {
	if got.Width != want.Width || got.Height != want.Height {
		return fmt.Errorf("%w: size %dx%d, want %dx%d", domain.ErrReferenceMismatch,
			got.Width, got.Height, want.Width, want.Height)
	}

	a, b := got.Members(), want.Members()
	for k := range a {
		if a[k] != b[k] {
			return fmt.Errorf("%w: pixel (%d,%d)", domain.ErrReferenceMismatch, k/got.Width, k%got.Width)
		}
	}
	return nil
}
