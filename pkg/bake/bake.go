package bake

import (
	"context"
	"time"

	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Result is a finished albedo table
type Result struct {
	Job Job

	// Albedo is indexed by (cosθ column, roughness row)
	Albedo *containers.Array2D[float64]

	// Average holds the hemispherical-hemispherical albedo of each row
	Average []float64

	Stats Stats
}

// Run bakes the table described by job on a pool of workers. Rows are
// independent; cancelling ctx stops the bake before the next row starts and
// returns an error whose cause is ctx.Err().
func Run(ctx context.Context, job Job, workers int) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	log := logger.OrNop(job.Logger)
	start := time.Now()

	pool, err := newWorkerPool(ctx, job, job.RoughRes, workers)
	if err != nil {
		return nil, err
	}
	log.Info("baking albedo table",
		zap.String("family", job.Family),
		zap.Int("cosThetaRes", job.CosThetaRes),
		zap.Int("roughnessRes", job.RoughRes),
		zap.Int("workers", pool.numWorkers))

	pool.Start()
	for y := 0; y < job.RoughRes; y++ {
		pool.Submit(rowTask{Row: y})
	}

	result := &Result{
		Job:     job,
		Albedo:  containers.NewArray2DSize[float64](job.CosThetaRes, job.RoughRes),
		Average: make([]float64, job.RoughRes),
		Stats: Stats{
			Workers:  pool.numWorkers,
			RowTimes: make([]time.Duration, job.RoughRes),
		},
	}

	var firstErr error
	for i := 0; i < job.RoughRes; i++ {
		row, _ := pool.Result()
		if row.Err != nil {
			if firstErr == nil {
				firstErr = row.Err
			}
			continue
		}
		for x, v := range row.Albedo {
			result.Albedo.SetXY(x, row.Row, v)
		}
		result.Average[row.Row] = row.Average
		result.Stats.Rows++
		result.Stats.Cells += len(row.Albedo)
		result.Stats.Samples += row.Samples
		result.Stats.Albedo.Merge(row.Stats)
		result.Stats.RowTimes[row.Row] = row.Elapsed
		log.Debug("row done", zap.Int("row", row.Row), zap.Duration("elapsed", row.Elapsed))
	}
	pool.Stop()

	result.Stats.Elapsed = time.Since(start)
	if firstErr != nil {
		log.Warn("bake cancelled", zap.Int("rowsDone", result.Stats.Rows), zap.Error(firstErr))
		return nil, errors.Wrapf(firstErr, "bake cancelled after %d of %d rows", result.Stats.Rows, job.RoughRes)
	}

	log.Info("bake complete",
		zap.Int("cells", result.Stats.Cells),
		zap.Int("samples", result.Stats.Samples),
		zap.Duration("elapsed", result.Stats.Elapsed))
	return result, nil
}
