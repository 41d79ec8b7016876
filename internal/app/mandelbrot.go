package app

import (
	"fmt"

	"go.uber.org/zap"

	"schedbench/internal/domain"
	"schedbench/pkg/accum"
	"schedbench/pkg/fractal"
	"schedbench/pkg/schedule"
)

type MandelbrotRenderer struct {
	logger *zap.Logger
	config domain.MandelbrotConfig
}

func NewMandelbrotRenderer(logger *zap.Logger, config domain.MandelbrotConfig) *MandelbrotRenderer {
	return &MandelbrotRenderer{
		logger: logger.With(zap.String("pipeline", domain.PipelineMandelbrot)),
		config: config,
	}
}

// Units is the size of the flattened height*width iteration space.
func (r *MandelbrotRenderer) Units() int {
	return r.config.Width * r.config.Height
}

// tile — пиксели одного захваченного блока
type tile struct {
	lo  int
	pix []fractal.RGB
}

// mandelbrotPartial is a worker's private accumulator.
type mandelbrotPartial struct {
	tiles  []tile
	inside int64
}

// canvas is the shared accumulator of one render.
type canvas struct {
	img     *domain.Image
	written []bool
	inside  int64
}

func mergeTiles(dst **canvas, src mandelbrotPartial) error {
	c := *dst
	for _, t := range src.tiles {
		for k := range t.pix {
			idx := t.lo + k
			if c.written[idx] {
				return fmt.Errorf("%w: index %d", domain.ErrDuplicateWrite, idx)
			}
			c.written[idx] = true
		}
		copy(c.img.Pix[t.lo:], t.pix)
	}
	c.inside += src.inside
	return nil
}

// Render evaluates every pixel with threads workers under policy and
// returns the run summary together with the finished image.
func (r *MandelbrotRenderer) Render(threads int, policy schedule.Policy) (domain.RunResult, *domain.Image, error) {
	cfg := r.config
	n := r.Units()
	params := cfg.Params()

	shared := accum.NewShared(&canvas{
		img:     domain.NewImage(cfg.Width, cfg.Height, cfg.ColorDepth),
		written: make([]bool, n),
	}, mergeTiles)
	var hits accum.Counter

	plan := schedule.NewPlan(policy, n, threads)

	err := forkJoin(r.logger, threads, func(worker int) error {
		var local mandelbrotPartial

		for {
			batch, ok := plan.Next(worker)
			if !ok {
				break
			}

			t := tile{lo: batch.Lo, pix: make([]fractal.RGB, batch.Len())}
			for idx := batch.Lo; idx < batch.Hi; idx++ {
				i, j := idx/cfg.Width, idx%cfg.Width
				member := fractal.Member(fractal.Coordinate(i, j, cfg.Height, cfg.Width), params)
				if member {
					if cfg.CountMode == domain.CountAtomic {
						hits.Add(1)
					} else {
						local.inside++
					}
				}
				t.pix[idx-batch.Lo] = fractal.Shade(member, worker, cfg.Tint, cfg.ColorDepth)
			}
			local.tiles = append(local.tiles, t)
		}

		return shared.Merge(local)
	})
	if err != nil {
		return domain.RunResult{}, nil, err
	}

	c := shared.Value()
	for idx, ok := range c.written {
		if !ok {
			return domain.RunResult{}, nil, fmt.Errorf("%w: pixel %d never written", domain.ErrCoverage, idx)
		}
	}

	inside := c.inside + hits.Load()
	r.logger.Debug("Render finished",
		zap.Int("threads", threads),
		zap.Stringer("policy", policy),
		zap.Int("claims", plan.Claims()),
		zap.Int("merges", shared.Merges()),
		zap.Int64("inside", inside))

	return domain.RunResult{
		Pipeline: domain.PipelineMandelbrot,
		Threads:  threads,
		Policy:   policy,
		Units:    n,
		Claims:   plan.Claims(),
		Inside:   inside,
	}, c.img, nil
}
