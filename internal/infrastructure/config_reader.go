package infrastructure

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"schedbench/internal/domain"
	"schedbench/pkg/fractal"
	"schedbench/pkg/schedule"
)

type YAMLConfigReader struct {
	logger *zap.Logger
	flags  *flag.FlagSet

	threads        string
	samples        int
	maxValue       int
	width, height  int
	logLevel       string
	histPolicies   string
	mandelPolicies string
	outputDir      string
	pinProcs       bool
}

func NewYAMLConfigReader(logger *zap.Logger) *YAMLConfigReader {
	return &YAMLConfigReader{logger: logger}
}

// RegisterFlags declares the command line overrides on set. Only flags the
// user actually set are applied by ReadConfig.
func (r *YAMLConfigReader) RegisterFlags(set *flag.FlagSet) {
	r.flags = set
	set.StringVar(&r.threads, "threads", "", "Comma separated thread counts, e.g. 1,2,4")
	set.IntVar(&r.samples, "samples", 0, "Number of histogram samples")
	set.IntVar(&r.maxValue, "max", 0, "Largest histogram value")
	set.IntVar(&r.width, "width", 0, "Image width")
	set.IntVar(&r.height, "height", 0, "Image height")
	set.StringVar(&r.logLevel, "log-level", "", "Log level")
	set.StringVar(&r.histPolicies, "hist-policies", "", "Histogram policies, e.g. \"dynamic,1;static\"")
	set.StringVar(&r.mandelPolicies, "mandel-policies", "", "Mandelbrot policies, e.g. \"dynamic,12\"")
	set.StringVar(&r.outputDir, "output-dir", "", "Directory for rendered images")
	set.BoolVar(&r.pinProcs, "pin-procs", false, "Set GOMAXPROCS to the thread count of each run")
}

func (r *YAMLConfigReader) ReadConfig(path string) (*domain.Config, error) {
	var config domain.Config
	// значения по умолчанию до разбора, чтобы YAML мог их явно выключить
	config.Histogram.Enabled = true
	config.Mandelbrot.Enabled = true

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Warn("Config file not found, using defaults", zap.String("path", path))
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Применяем аргументы командной строки
	if err := r.applyCommandLineFlags(&config); err != nil {
		return nil, err
	}

	// Устанавливаем значения по умолчанию
	r.setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *YAMLConfigReader) applyCommandLineFlags(config *domain.Config) error {
	if r.flags == nil {
		return nil
	}

	var err error
	r.flags.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "threads":
			config.Threads, err = parseInts(r.threads)
		case "samples":
			config.Histogram.Samples = r.samples
		case "max":
			config.Histogram.Max = r.maxValue
		case "width":
			config.Mandelbrot.Width = r.width
		case "height":
			config.Mandelbrot.Height = r.height
		case "log-level":
			config.LogLevel = r.logLevel
		case "hist-policies":
			config.Histogram.Policies, err = parsePolicies(r.histPolicies)
		case "mandel-policies":
			config.Mandelbrot.Policies, err = parsePolicies(r.mandelPolicies)
		case "output-dir":
			config.Mandelbrot.OutputDir = r.outputDir
		case "pin-procs":
			config.PinProcs = r.pinProcs
		}
		if err != nil {
			err = fmt.Errorf("flag -%s: %w", f.Name, err)
		}
	})
	return err
}

func (r *YAMLConfigReader) setDefaults(config *domain.Config) {
	if len(config.Threads) == 0 {
		config.Threads = []int{1, 2, 4, 8, 16, 32}
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	m := &config.Mandelbrot
	if m.Width == 0 {
		m.Width = 1200
	}
	if m.Height == 0 {
		m.Height = 1200
	}
	if m.MaxIterations == 0 {
		m.MaxIterations = fractal.MaxIterations
	}
	if m.EscapeRadius == 0 {
		m.EscapeRadius = fractal.EscapeRadius
	}
	if m.ColorDepth == 0 {
		m.ColorDepth = 255
	}
	if m.Tint == 0 {
		m.Tint = 5
	}
	if m.CountMode == "" {
		m.CountMode = domain.CountMerge
	}
	if len(m.Policies) == 0 {
		m.Policies = []schedule.Policy{schedule.DynamicChunk(12)}
	}

	h := &config.Histogram
	if h.Max == 0 {
		h.Max = 10
	}
	if h.Samples == 0 {
		h.Samples = 50_000_000
	}
	if h.Seed == 0 {
		h.Seed = 1
	}
	if len(h.Policies) == 0 {
		h.Policies = []schedule.Policy{
			schedule.DynamicChunk(1),
			schedule.DynamicChunk(100),
			schedule.StaticPolicy(),
			schedule.GuidedPolicy(),
		}
	}
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Политики разделяются ';', так как запятая уже занята размером блока
func parsePolicies(s string) ([]schedule.Policy, error) {
	var out []schedule.Policy
	for _, field := range strings.Split(s, ";") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		p, err := schedule.ParsePolicy(field)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
