package app

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"schedbench/internal/domain"
	"schedbench/pkg/fractal"
	"schedbench/pkg/schedule"
)

type memoryWriter struct {
	images map[string]*domain.Image
}

func (w *memoryWriter) WriteImage(filename string, img *domain.Image) error {
	if w.images == nil {
		w.images = make(map[string]*domain.Image)
	}
	w.images[filename] = img
	return nil
}

type staticReader struct {
	img *domain.Image
	err error
}

func (r staticReader) ReadImage(string) (*domain.Image, error) {
	return r.img, r.err
}

type recordingReporter struct {
	titles     []string
	runs       [][]domain.RunResult
	histograms []domain.RunResult
}

func (r *recordingReporter) ReportRuns(title string, runs []domain.RunResult) error {
	r.titles = append(r.titles, title)
	r.runs = append(r.runs, runs)
	return nil
}

func (r *recordingReporter) ReportHistogram(run domain.RunResult) error {
	r.histograms = append(r.histograms, run)
	return nil
}

func benchConfig(t *testing.T) *domain.Config {
	m := smallMandelbrot(8, 8)
	m.Policies = []schedule.Policy{schedule.DynamicChunk(3), schedule.StaticPolicy()}
	m.OutputDir = t.TempDir()

	return &domain.Config{
		Threads:    []int{1, 2, 4},
		PinProcs:   true,
		Mandelbrot: m,
		Histogram: domain.HistogramConfig{
			Enabled:  true,
			Max:      10,
			Samples:  1000,
			Seed:     1,
			Policies: histogramPolicies,
		},
	}
}

func TestBench_Run(t *testing.T) {
	config := benchConfig(t)
	writer := &memoryWriter{}
	reporter := &recordingReporter{}

	bench := NewBench(zaptest.NewLogger(t), config, writer, nil, reporter)
	require.NoError(t, bench.Run())

	require.Equal(t, []string{"Histogram", "Mandelbrot"}, reporter.titles)

	hist := reporter.runs[0]
	require.Len(t, hist, len(histogramPolicies)*len(config.Threads))
	assert.Len(t, reporter.histograms, len(hist))

	// порядок: политика снаружи, число потоков внутри
	for k, res := range hist {
		assert.Equal(t, histogramPolicies[k/3], res.Policy)
		assert.Equal(t, config.Threads[k%3], res.Threads)
		assert.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))
	}

	mandel := reporter.runs[1]
	require.Len(t, mandel, 2*len(config.Threads))

	ids := make(map[uuid.UUID]bool)
	for _, res := range append(hist, mandel...) {
		assert.NotEqual(t, uuid.Nil, res.ID)
		assert.False(t, ids[res.ID], "duplicate run id")
		ids[res.ID] = true
	}

	assert.Len(t, writer.images, 2)
	for name, img := range writer.images {
		assert.Contains(t, name, "mandelbrot_")
		assert.Equal(t, 64, len(img.Pix))
	}
}

func TestBench_DisabledPipelines(t *testing.T) {
	config := benchConfig(t)
	config.Histogram.Enabled = false
	config.Mandelbrot.Enabled = false
	reporter := &recordingReporter{}

	bench := NewBench(zaptest.NewLogger(t), config, nil, nil, reporter)
	require.NoError(t, bench.Run())
	assert.Empty(t, reporter.titles)
}

func TestBench_Reference(t *testing.T) {
	config := benchConfig(t)
	config.Histogram.Enabled = false
	config.Mandelbrot.Reference = "reference.ppm"

	_, ref, err := NewMandelbrotRenderer(zaptest.NewLogger(t), config.Mandelbrot).Render(1, schedule.StaticPolicy())
	require.NoError(t, err)

	bench := NewBench(zaptest.NewLogger(t), config, &memoryWriter{}, staticReader{img: ref}, &recordingReporter{})
	require.NoError(t, bench.Run())

	// инвертируем один пиксель эталона
	broken := domain.NewImage(ref.Width, ref.Height, ref.Depth)
	copy(broken.Pix, ref.Pix)
	if broken.Pix[0] == (fractal.RGB{255, 255, 255}) {
		broken.Pix[0] = fractal.RGB{0, 0, 0}
	} else {
		broken.Pix[0] = fractal.RGB{255, 255, 255}
	}

	bench = NewBench(zaptest.NewLogger(t), config, &memoryWriter{}, staticReader{img: broken}, &recordingReporter{})
	assert.ErrorIs(t, bench.Run(), domain.ErrReferenceMismatch)

	readErr := errors.New("boom")
	bench = NewBench(zaptest.NewLogger(t), config, &memoryWriter{}, staticReader{err: readErr}, &recordingReporter{})
	assert.ErrorIs(t, bench.Run(), readErr)
}

func TestCompareMembership_Size(t *testing.T) {
	err := CompareMembership(domain.NewImage(2, 2, 255), domain.NewImage(2, 3, 255))
	assert.ErrorIs(t, err, domain.ErrReferenceMismatch)
}
