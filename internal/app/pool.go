package app

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"schedbench/internal/domain"
)

// forkJoin starts one goroutine per worker and waits for all of them.
// The first worker error is returned after every worker has finished.
func forkJoin(logger *zap.Logger, workers int, body domain.WorkerBody) error {
	var g errgroup.Group

	for i := range workers {
		logger.Debug("Starting worker", zap.Int("id", i))
		g.Go(func() error {
			if err := body(i); err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			return nil
		})
	}

	return g.Wait()
}
