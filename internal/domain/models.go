package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"schedbench/pkg/fractal"
	"schedbench/pkg/schedule"
)

// Config представляет конфигурацию приложения
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	LogFile    string           `yaml:"log_file"`
	Threads    []int            `yaml:"threads"`
	PinProcs   bool             `yaml:"pin_procs"`
	Mandelbrot MandelbrotConfig `yaml:"mandelbrot"`
	Histogram  HistogramConfig  `yaml:"histogram"`
}

type MandelbrotConfig struct {
	Enabled       bool              `yaml:"enabled"`
	Width         int               `yaml:"width"`
	Height        int               `yaml:"height"`
	MaxIterations int               `yaml:"max_iterations"`
	EscapeRadius  float64           `yaml:"escape_radius"`
	ColorDepth    int               `yaml:"color_depth"`
	Tint          int               `yaml:"tint"`
	CountMode     CountMode         `yaml:"count_mode"`
	Policies      []schedule.Policy `yaml:"policies"`
	OutputDir     string            `yaml:"output_dir"`
	Reference     string            `yaml:"reference"`
}

func (m MandelbrotConfig) Params() fractal.Params {
	return fractal.Params{MaxIterations: m.MaxIterations, EscapeRadius: m.EscapeRadius}
}

type HistogramConfig struct {
	Enabled  bool              `yaml:"enabled"`
	Max      int               `yaml:"max"`
	Samples  int               `yaml:"samples"`
	Seed     uint64            `yaml:"seed"`
	Policies []schedule.Policy `yaml:"policies"`
}

// Validate collects every configuration problem instead of stopping at
// the first one.
func (c *Config) Validate() error {
	var err error

	if len(c.Threads) == 0 {
		err = multierr.Append(err, errors.New("threads: empty sweep list"))
	}
	for _, t := range c.Threads {
		if t < 1 {
			err = multierr.Append(err, fmt.Errorf("threads: %d is not positive", t))
		}
	}

	if m := c.Mandelbrot; m.Enabled {
		if m.Width < 1 || m.Height < 1 {
			err = multierr.Append(err, fmt.Errorf("mandelbrot: size %dx%d", m.Width, m.Height))
		}
		if m.MaxIterations < 1 {
			err = multierr.Append(err, fmt.Errorf("mandelbrot: max_iterations %d", m.MaxIterations))
		}
		if m.EscapeRadius <= 0 {
			err = multierr.Append(err, fmt.Errorf("mandelbrot: escape_radius %g", m.EscapeRadius))
		}
		if m.ColorDepth < 1 || m.ColorDepth > 65535 {
			err = multierr.Append(err, fmt.Errorf("mandelbrot: color_depth %d", m.ColorDepth))
		}
		if m.CountMode != CountMerge && m.CountMode != CountAtomic {
			err = multierr.Append(err, fmt.Errorf("mandelbrot: count_mode %q", m.CountMode))
		}
		err = multierr.Append(err, validatePolicies("mandelbrot", m.Policies))
	}

	if h := c.Histogram; h.Enabled {
		if h.Max < 0 {
			err = multierr.Append(err, fmt.Errorf("histogram: max %d", h.Max))
		}
		if h.Samples < 0 {
			err = multierr.Append(err, fmt.Errorf("histogram: samples %d", h.Samples))
		}
		err = multierr.Append(err, validatePolicies("histogram", h.Policies))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validatePolicies(section string, policies []schedule.Policy) error {
	if len(policies) == 0 {
		return fmt.Errorf("%s: empty policy list", section)
	}
	var err error
	for _, p := range policies {
		if perr := p.Validate(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", section, perr))
		}
	}
	return err
}

// CountMode выбирает способ подсчёта точек внутри множества
type CountMode string

const (
	// CountMerge adds a per-worker count during the final merge.
	CountMerge CountMode = "merge"
	// CountAtomic bumps a shared atomic counter on every hit.
	CountAtomic CountMode = "atomic"
)

// Image — полный буфер пикселей
type Image struct {
	Width, Height int
	Depth         int
	Pix           []fractal.RGB
}

func NewImage(width, height, depth int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Depth:  depth,
		Pix:    make([]fractal.RGB, width*height),
	}
}

func (img *Image) At(i, j int) fractal.RGB {
	return img.Pix[i*img.Width+j]
}

// Members marks every pixel that does not carry the outside colour.
func (img *Image) Members() []bool {
	outside := fractal.Shade(false, 0, 0, img.Depth)
	mask := make([]bool, len(img.Pix))
	for k, px := range img.Pix {
		mask[k] = px != outside
	}
	return mask
}

// Histogram — счётчики по корзинам
type Histogram struct {
	Counts []int64
}

func NewHistogram(buckets int) *Histogram {
	return &Histogram{Counts: make([]int64, buckets)}
}

func (h *Histogram) Add(bucket int) {
	h.Counts[bucket]++
}

func (h *Histogram) Len() int {
	return len(h.Counts)
}

func (h *Histogram) Total() int64 {
	var total int64
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// MergeFrom adds other bucket by bucket.
func (h *Histogram) MergeFrom(other *Histogram) error {
	if other.Len() != h.Len() {
		return fmt.Errorf("%w: %d buckets into %d", ErrBucketMismatch, other.Len(), h.Len())
	}
	for i, c := range other.Counts {
		h.Counts[i] += c
	}
	return nil
}

// RunResult — итог одного запуска из серии
type RunResult struct {
	ID       uuid.UUID
	Pipeline string
	Threads  int
	Policy   schedule.Policy
	Elapsed  time.Duration
	Units    int
	Claims   int
	Inside   int64
	Buckets  []int64
}

// Throughput is processed units per second.
func (r RunResult) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Units) / r.Elapsed.Seconds()
}

const (
	PipelineMandelbrot = "mandelbrot"
	PipelineHistogram  = "histogram"
)

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrCoverage          = errors.New("iteration space not fully covered")
	ErrDuplicateWrite    = errors.New("pixel written more than once")
	ErrBucketMismatch    = errors.New("histogram bucket count mismatch")
	ErrSampleMismatch    = errors.New("histogram total differs from sample count")
	ErrReferenceMismatch = errors.New("membership differs from reference image")
)
