package renderer

import (
	"fmt"
	"runtime"
	"sync"
)

// TileTask represents one tile of one marching pass
type TileTask struct {
	Tile   *Tile
	Buffer *RayBuffer // Shared ray state; tiles never overlap
	Frame  FrameParams
	TaskID int // Index into the tile list
}

// TileResult contains the result from marching a tile
type TileResult struct {
	TaskID int
	Stats  PassStats
	Error  error
}

// WorkerPool manages parallel tile marching
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	capacity    int
	wg          sync.WaitGroup
}

// Worker handles individual tile tasks
type Worker struct {
	ID          int
	kernel      *Kernel
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool able to hold maxTiles tasks of one pass
func NewWorkerPool(kernel *Kernel, maxTiles, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	maxTiles = max(maxTiles, 1)

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),   // Buffer for a whole pass
		resultQueue: make(chan TileResult, maxTiles), // Buffer for all its results
		numWorkers:  numWorkers,
		capacity:    maxTiles,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			kernel:      kernel,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Capacity returns the number of tasks a single pass may submit
func (wp *WorkerPool) Capacity() int {
	return wp.capacity
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.march(task)
	}
}

// march advances every pixel of the task's tile by one pass
func (w *Worker) march(task TileTask) (result TileResult) {
	result.TaskID = task.TaskID
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("worker %d: tile %d: %v", w.ID, task.Tile.ID, r)
		}
	}()

	bounds := task.Tile.Bounds
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := task.Buffer.At(x, y)
			result.Stats.Add(w.kernel.March(ray, task.Frame), ray)
		}
	}
	return result
}
