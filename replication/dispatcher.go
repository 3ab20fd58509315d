package replication

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher fans replication tasks out to a fixed pool of workers over a
// bounded queue. Enqueueing never blocks: when the queue is full the task is
// dropped and counted, trading completeness for caller latency.
type Dispatcher struct {
	mirror  Mirror
	tasks   chan Task
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers consuming from a queue of queueSize tasks.
// Each task gets its own deadline of timeout.
func NewDispatcher(mirror Mirror, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		mirror:  mirror,
		tasks:   make(chan Task, queueSize),
		timeout: timeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue offers a task to the queue and reports whether it was accepted.
// Tasks offered after Close, or while the queue is full, are dropped.
func (d *Dispatcher) Enqueue(task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		tasksDropped.Inc()
		return false
	}

	select {
	case d.tasks <- task:
		tasksDispatched.WithLabelValues(string(task.Action)).Inc()
		queueDepth.Inc()
		return true
	default:
		tasksDropped.Inc()
		log.Warn().
			Str("action", string(task.Action)).
			Str("userID", task.UserID).
			Msg("replication queue full, task dropped")
		return false
	}
}

// UserCreated enqueues a create for the given wire document.
func (d *Dispatcher) UserCreated(userID string, document any) {
	d.enqueueDocument(ActionCreate, userID, document)
}

// UserUpdated enqueues an update carrying the full post-update document.
func (d *Dispatcher) UserUpdated(userID string, document any) {
	d.enqueueDocument(ActionUpdate, userID, document)
}

// UserDeleted enqueues a delete for the given resource.
func (d *Dispatcher) UserDeleted(userID string) {
	d.Enqueue(Task{Action: ActionDelete, UserID: userID})
}

func (d *Dispatcher) enqueueDocument(action Action, userID string, document any) {
	payload, err := json.Marshal(document)
	if err != nil {
		tasksDropped.Inc()
		log.Error().Err(err).Str("userID", userID).Msg("replication payload marshal failed")
		return
	}
	d.Enqueue(Task{Action: action, UserID: userID, Payload: payload})
}

// Close stops intake and blocks until in-flight and queued tasks finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		queueDepth.Dec()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.mirror.Apply(ctx, task)
		cancel()
		if err != nil {
			tasksFailed.Inc()
			log.Error().Err(err).
				Str("action", string(task.Action)).
				Str("userID", task.UserID).
				Msg("replication to mirror failed")
			continue
		}
		tasksSucceeded.Inc()
	}
}
