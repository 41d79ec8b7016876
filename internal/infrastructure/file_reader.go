package infrastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"schedbench/internal/domain"
	"schedbench/pkg/fractal"
)

// PPMFileReader читает эталонные изображения P3
type PPMFileReader struct {
	logger *zap.Logger
}

func NewPPMFileReader(logger *zap.Logger) *PPMFileReader {
	return &PPMFileReader{logger: logger}
}

func (r *PPMFileReader) ReadImage(filename string) (*domain.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := DecodePPM(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	r.logger.Debug("Read image",
		zap.String("file", filename),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return img, nil
}

// DecodePPM parses a plain (P3) portable pixmap. Comments starting with
// '#' run to the end of the line.
func DecodePPM(in io.Reader) (*domain.Image, error) {
	scanner := bufio.NewScanner(in)
	var tokens []string
	for scanner.Scan() {
		line := scanner.Text()
		if k := strings.IndexByte(line, '#'); k >= 0 {
			line = line[:k]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(tokens) < 4 || tokens[0] != "P3" {
		return nil, domain.ErrInvalidFileFormat
	}

	// ширина, высота, глубина цвета
	var header [3]int
	for k := range header {
		v, err := strconv.Atoi(tokens[k+1])
		if err != nil || v < 1 {
			return nil, fmt.Errorf("%w: header field %q", domain.ErrInvalidFileFormat, tokens[k+1])
		}
		header[k] = v
	}

	img := domain.NewImage(header[0], header[1], header[2])
	values := tokens[4:]
	if len(values) != 3*len(img.Pix) {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", domain.ErrInvalidFileFormat,
			len(values), img.Width, img.Height)
	}

	for k := range img.Pix {
		var px fractal.RGB
		for ch := range px {
			v, err := strconv.Atoi(values[3*k+ch])
			if err != nil || v < 0 || v > img.Depth {
				return nil, fmt.Errorf("%w: sample %q", domain.ErrInvalidFileFormat, values[3*k+ch])
			}
			px[ch] = v
		}
		img.Pix[k] = px
	}
	return img, nil
}
