package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type Result struct {
	SeekerID uuid.UUID
	Outcome  Outcome
	Err      error
}

type Task func(ctx context.Context) Result

// WorkerPool runs submitted tasks on a fixed number of goroutines, optionally
// throttled to a fixed rate across all workers.
type WorkerPool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	limiter *rate.Limiter
}

func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// SetRateLimit caps task starts at rps per second across all workers. A
// non-positive rps removes the cap.
func (p *WorkerPool) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	p.mu.Lock()
	p.limiter = lim
	p.mu.Unlock()
}

// Submit blocks while the buffer is full. It returns false once ctx is done.
func (p *WorkerPool) Submit(ctx context.Context, t Task) bool {
	if p == nil || t == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case p.tasks <- t:
		return true
	}
}

func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	close(p.tasks)
}

// Run starts the workers. The returned channel closes after Close has been
// called and every queued task has finished, or as soon as ctx is done.
func (p *WorkerPool) Run(ctx context.Context) <-chan Result {
	if p == nil {
		out := make(chan Result)
		close(out)
		return out
	}
	out := make(chan Result, p.workers)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					p.mu.RLock()
					lim := p.limiter
					p.mu.RUnlock()
					if lim != nil {
						if err := lim.Wait(ctx); err != nil {
							return
						}
					}
					res := t(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- res:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
