package bake

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-scatter/pkg/bxdf"
	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/sampler"
)

// rowTask asks a worker for one roughness row of the table
type rowTask struct {
	Row int
}

// rowResult contains the values computed for one row
type rowResult struct {
	Row     int
	Albedo  []float64 // one value per cosθ column
	Average float64   // hemispherical-hemispherical albedo of the row
	Stats   AlbedoStats
	Samples int
	Elapsed time.Duration
	Err     error
}

// workerPool manages parallel row evaluation
type workerPool struct {
	taskQueue   chan rowTask
	resultQueue chan rowResult
	workers     []*worker
	numWorkers  int
	wg          sync.WaitGroup
}

// worker evaluates rows with its own sampler and scratch memory
type worker struct {
	ID          int
	ctx         context.Context
	job         Job
	sampler     sampler.PixelSampler
	scratch     *bxdf.ScratchBuffer
	samples     *containers.AoSoA3[float64, core.Vec2, core.Vec2]
	uc          []float64
	u, uo       []core.Vec2
	taskQueue   chan rowTask
	resultQueue chan rowResult
}

// newWorkerPool creates a pool sized for rows tasks. numWorkers <= 0 uses
// one worker per CPU.
func newWorkerPool(ctx context.Context, job Job, rows, numWorkers int) (*workerPool, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, rows)

	wp := &workerPool{
		taskQueue:   make(chan rowTask, rows),
		resultQueue: make(chan rowResult, rows),
		numWorkers:  numWorkers,
	}

	proto, err := job.newSampler()
	if err != nil {
		return nil, err
	}
	n := proto.SamplesPerPixel()

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &worker{
			ID:          i,
			ctx:         ctx,
			job:         job,
			sampler:     proto.Clone(),
			scratch:     bxdf.NewScratchBuffer(),
			samples:     containers.NewAoSoA3[float64, core.Vec2, core.Vec2](n),
			uc:          make([]float64, n),
			u:           make([]core.Vec2, n),
			uo:          make([]core.Vec2, n),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp, nil
}

// Start begins all workers
func (wp *workerPool) Start() {
	for _, w := range wp.workers {
		wp.wg.Add(1)
		go w.run(&wp.wg)
	}
}

// Stop closes the task queue and waits for the workers to drain it
func (wp *workerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Submit queues a row task
func (wp *workerPool) Submit(task rowTask) {
	wp.taskQueue <- task
}

// Result retrieves a completed row
func (wp *workerPool) Result() (rowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// run is the main worker loop
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Rows still queued after cancellation are answered without work
		if err := w.ctx.Err(); err != nil {
			w.resultQueue <- rowResult{Row: task.Row, Err: err}
			continue
		}
		w.resultQueue <- w.renderRow(task.Row)
	}
}

// renderRow tabulates one roughness row
func (w *worker) renderRow(y int) rowResult {
	start := time.Now()
	defer w.scratch.Reset()

	job := w.job
	h := job.newBxDF(w.scratch, job.Roughness(y))
	result := rowResult{Row: y, Albedo: make([]float64, job.CosThetaRes)}

	for x := 0; x < job.CosThetaRes; x++ {
		cosTheta := job.CosTheta(x)
		wo := core.NewVec3(core.SafeSqrt(1-cosTheta*cosTheta), 0, cosTheta)
		w.fillSamples(core.NewPoint2i(x, y))
		albedo := h.RhoHD(wo, w.uc, w.u).Average()
		result.Albedo[x] = albedo
		result.Stats.AddSample(albedo)
		result.Samples += len(w.uc)
	}

	// The column past the table edge seeds the hemispherical average
	w.fillSamples(core.NewPoint2i(job.CosThetaRes, y))
	result.Average = h.RhoHH(w.uo, w.uc, w.u).Average()
	result.Samples += len(w.uc)

	result.Elapsed = time.Since(start)
	return result
}

// fillSamples draws the sample set of cell p into the staging buffer and
// splits it into the slices the rho estimators take
func (w *worker) fillSamples(p core.Point2i) {
	for i := 0; i < w.samples.Len(); i++ {
		w.sampler.StartPixelSample(p, i)
		uc := w.sampler.Get1D()
		u := w.sampler.Get2D()
		uo := w.sampler.Get2D()
		w.samples.Set(i, uc, u, uo)
	}
	for i := range w.uc {
		w.uc[i] = w.samples.Get0(i)
		w.u[i] = w.samples.Get1(i)
		w.uo[i] = w.samples.Get2(i)
	}
}
