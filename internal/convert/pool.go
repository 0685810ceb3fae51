package convert

import (
	"context"
	"runtime"
	"sync"
)

// maxWorkers caps the pool size however many CPUs there are.
const maxWorkers = 32

// workerPool runs fn over a fixed set of jobs on a bounded number of
// goroutines.
type workerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// newWorkerPool sizes the pool for numJobs jobs. Zero or negative
// numWorkers means one worker per CPU.
func newWorkerPool[Job any, Result any](numWorkers, numJobs int) *workerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, maxWorkers)
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}
	numWorkers = max(numWorkers, 1)

	return &workerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// start launches the workers. Once ctx is done, jobs still queued are
// passed to cancelled instead of fn.
func (p *workerPool[Job, Result]) start(ctx context.Context, fn func(context.Context, Job) Result, cancelled func(Job, error) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if err := ctx.Err(); err != nil {
					p.results <- cancelled(job, err)
					continue
				}
				p.results <- fn(ctx, job)
			}
		}()
	}
}

func (p *workerPool[Job, Result]) submit(job Job) {
	p.jobs <- job
}

// close stops accepting jobs. The results channel is closed once every
// worker has finished.
func (p *workerPool[Job, Result]) close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *workerPool[Job, Result]) resultsChan() <-chan Result {
	return p.results
}
