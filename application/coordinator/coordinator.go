// Package coordinator serializes all mutating work for a session onto a
// single goroutine. Commands for different sessions run concurrently, but
// within one session they execute strictly in arrival order, which keeps
// handlers free of locking and makes the event stream per session totally
// ordered.
package coordinator

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"retro-backend/application/commands/bus"
	"retro-backend/pkg/errors"
	"retro-backend/pkg/observability"
)

const queueDepth = 64

// Coordinator routes commands to per-session workers.
type Coordinator struct {
	bus     *bus.CommandBus
	logger  *zap.Logger
	metrics *observability.Collector

	mu      sync.Mutex
	workers map[string]*worker
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

type worker struct {
	queue  chan task
	exited chan struct{}
}

type task struct {
	ctx   context.Context
	run   func(ctx context.Context) (interface{}, error)
	reply chan taskResult
}

type taskResult struct {
	value interface{}
	err   error
}

// NewCoordinator creates a coordinator dispatching to the given command bus.
// The metrics collector may be nil.
func NewCoordinator(commandBus *bus.CommandBus, logger *zap.Logger, metrics *observability.Collector) *Coordinator {
	return &Coordinator{
		bus:     commandBus,
		logger:  logger,
		metrics: metrics,
		workers: make(map[string]*worker),
		done:    make(chan struct{}),
	}
}

// Submit enqueues the command on its session's queue and waits for the
// result. Once a command has been accepted it runs to completion even if
// ctx is cancelled while it waits in the queue.
func (c *Coordinator) Submit(ctx context.Context, cmd bus.Command) (interface{}, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cmdName := reflect.TypeOf(cmd).String()
	start := time.Now()

	result, err := c.Do(ctx, cmd.SessionKey(), func(ctx context.Context) (interface{}, error) {
		return c.bus.Send(ctx, cmd)
	})

	if c.metrics != nil {
		c.metrics.CommandDuration.WithLabelValues(cmdName).Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.CommandErrors.WithLabelValues(cmdName, string(errors.TypeOf(err))).Inc()
		}
	}
	return result, err
}

// Do runs fn on the session's worker goroutine. It is the serialization
// point shared by command dispatch and consistent snapshot reads.
func (c *Coordinator) Do(ctx context.Context, sessionKey string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	w, err := c.workerFor(sessionKey)
	if err != nil {
		return nil, err
	}

	t := task{ctx: ctx, run: fn, reply: make(chan taskResult, 1)}

	select {
	case w.queue <- t:
	case <-w.exited:
		return nil, errors.NewUnavailableError("coordinator is shutting down")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-t.reply:
		return res.value, res.err
	case <-w.exited:
		// Queued behind the final drain during shutdown.
		return nil, errors.NewUnavailableError("coordinator is shutting down")
	}
}

func (c *Coordinator) workerFor(sessionKey string) (*worker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.NewUnavailableError("coordinator is shutting down")
	}

	w, ok := c.workers[sessionKey]
	if !ok {
		w = &worker{
			queue:  make(chan task, queueDepth),
			exited: make(chan struct{}),
		}
		c.workers[sessionKey] = w
		c.wg.Add(1)
		go c.runWorker(sessionKey, w)
	}
	return w, nil
}

func (c *Coordinator) runWorker(sessionKey string, w *worker) {
	defer c.wg.Done()
	defer close(w.exited)

	for {
		select {
		case t := <-w.queue:
			c.execute(t)
		case <-c.done:
			// Finish work that was accepted before shutdown.
			for {
				select {
				case t := <-w.queue:
					c.execute(t)
				default:
					c.logger.Debug("session worker stopped", zap.String("session", sessionKey))
					return
				}
			}
		}
	}
}

func (c *Coordinator) execute(t task) {
	value, err := t.run(t.ctx)
	t.reply <- taskResult{value: value, err: err}
}

// Close stops every worker after draining accepted commands. Submissions
// after Close return an unavailable error.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()
}
