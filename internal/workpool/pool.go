package workpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"sync"
)

// DefaultName prefixes worker labels when Options.Name is empty.
const DefaultName = "request"

// Options configures a Pool.
type Options struct {
	// Workers is the number of worker goroutines. Zero means GOMAXPROCS.
	Workers int
	// Name prefixes worker labels ("<name>-worker-<n>").
	Name string
	// Logger receives panic reports. Nil means slog.Default().
	Logger *slog.Logger
	// OnPanic is called after a job panic has been recovered and logged.
	OnPanic func(worker string, value any)
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers int
	Queued  int
	Active  int
}

// Pool is a fixed-size set of workers fed from an unbounded FIFO queue.
// Workers start on the first submission and live until Close.
type Pool struct {
	workers int
	name    string
	logger  *slog.Logger
	onPanic func(string, any)

	startOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	active int
	closed bool
}

// New constructs a pool. No goroutines are started until work arrives.
func New(opts Options) *Pool {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		workers: workers,
		name:    name,
		logger:  logger,
		onPanic: opts.OnPanic,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit queues work and returns a channel that yields its result exactly
// once. It never blocks. The channel is closed without a value if the work
// panics or the pool has been closed.
func Submit[T any](p *Pool, work func() T) <-chan T {
	ch := make(chan T, 1)
	job := func() {
		defer close(ch)
		ch <- work()
	}
	if !p.enqueue(job) {
		close(ch)
	}
	return ch
}

func (p *Pool) enqueue(job func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, job)
	p.mu.Unlock()

	p.startOnce.Do(p.start)
	p.cond.Signal()
	return true
}

func (p *Pool) start() {
	p.wg.Add(p.workers)
	for i := range p.workers {
		name := fmt.Sprintf("%s-worker-%d", p.name, i)
		go p.run(name)
	}
}

func (p *Pool) run(name string) {
	defer p.wg.Done()
	pprof.Do(context.Background(), pprof.Labels("worker", name), func(context.Context) {
		for {
			job, ok := p.next()
			if !ok {
				return
			}
			p.exec(name, job)
		}
	})
}

// next blocks until a job is available. It returns false once the pool is
// closed and the queue has drained.
func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	p.active++
	return job, true
}

func (p *Pool) exec(name string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("worker job panicked",
				slog.String("worker", name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			if p.onPanic != nil {
				p.onPanic(name, r)
			}
		}
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()
	job()
}

// Stats reports the queue depth and the number of running jobs.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers: p.workers,
		Queued:  len(p.queue),
		Active:  p.active,
	}
}

// Close stops accepting work, lets the workers drain the queue and waits
// for them. Jobs already running are waited for, not interrupted.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}
