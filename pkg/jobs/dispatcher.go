package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of best-effort work executed after a durable write has
// committed. Failures are retried and ultimately logged, never surfaced to
// the request that produced the task.
type Task struct {
	ID       string
	Kind     string
	Run      func(context.Context) error
	Attempt  int
	Enqueued time.Time
}

// DispatcherConfig tunes worker pool behaviour. OnExhausted, when set, is
// called once per task after its final retry fails.
type DispatcherConfig struct {
	Workers     int
	BufferSize  int
	MaxRetries  int
	RetryDelay  time.Duration
	Logger      *zap.Logger
	OnExhausted func(task Task, err error)
}

// Dispatcher drains post-commit tasks on a small worker pool.
type Dispatcher struct {
	workers     int
	maxRetries  int
	retryDelay  time.Duration
	logger      *zap.Logger
	onExhausted func(task Task, err error)

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDispatcher builds a dispatcher with sane defaults.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 8
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Dispatcher{
		workers:     cfg.Workers,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		logger:      cfg.Logger,
		onExhausted: cfg.OnExhausted,
		tasks:       make(chan Task, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.started = true
	d.logger.Sugar().Infow("dispatcher started", "workers", d.workers)
}

// Stop cancels workers and waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("dispatcher stopped")
}

// Enqueue pushes a task onto the queue.
func (d *Dispatcher) Enqueue(task Task) error {
	d.mu.Lock()
	ctx := d.ctx
	started := d.started
	d.mu.Unlock()

	if !started {
		return fmt.Errorf("dispatcher not started")
	}
	if task.Run == nil {
		return fmt.Errorf("task %s has no run function", task.ID)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("dispatcher stopped: %w", ctx.Err())
	case d.tasks <- task:
		return nil
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case task := <-d.tasks:
			if err := task.Run(d.ctx); err != nil {
				d.handleFailure(task, err)
			}
		}
	}
}

func (d *Dispatcher) handleFailure(task Task, err error) {
	task.Attempt++
	if task.Attempt > d.maxRetries {
		d.logger.Sugar().Errorw("task exceeded retries", "task_id", task.ID, "kind", task.Kind, "error", err)
		if d.onExhausted != nil {
			d.onExhausted(task, err)
		}
		return
	}
	d.logger.Sugar().Warnw("task failed, retrying", "task_id", task.ID, "kind", task.Kind, "attempt", task.Attempt, "error", err)

	go func(t Task) {
		timer := time.NewTimer(d.retryDelay)
		defer timer.Stop()
		select {
		case <-d.ctx.Done():
			return
		case <-timer.C:
			if err := d.Enqueue(t); err != nil {
				d.logger.Sugar().Errorw("failed to requeue task", "task_id", t.ID, "error", err)
			}
		}
	}(task)
}
