package infrastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"schedbench/internal/domain"
)

// PPMFileWriter пишет изображение в текстовом формате P3
type PPMFileWriter struct {
	logger *zap.Logger
}

func NewPPMFileWriter(logger *zap.Logger) *PPMFileWriter {
	return &PPMFileWriter{logger: logger}
}

func (w *PPMFileWriter) WriteImage(filename string, img *domain.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w.logger.Debug("Writing image",
		zap.String("file", filename),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return EncodePPM(file, img)
}

// EncodePPM writes img as a plain (P3) portable pixmap.
func EncodePPM(out io.Writer, img *domain.Image) error {
	writer := bufio.NewWriter(out)

	// Заголовок
	fmt.Fprintf(writer, "P3\n%d %d\n%d\n", img.Width, img.Height, img.Depth)

	// Один пиксель на строку
	for _, px := range img.Pix {
		fmt.Fprintf(writer, "%d %d %d\n", px[0], px[1], px[2])
	}

	return writer.Flush()
}
