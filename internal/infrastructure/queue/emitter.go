package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/api/metrics"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type emission struct {
	group string
	event domain.RealtimeEvent
}

// Emitter decouples request handlers from realtime delivery. Events are
// routed to a fixed set of workers by hashing the group name, so events for
// one recipient are delivered in the order they were emitted.
type Emitter struct {
	workers []chan emission
	sink    ports.Broadcaster
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewEmitter creates an Emitter with numWorkers sharded workers feeding sink.
// Non-positive sizes fall back to the defaults.
func NewEmitter(numWorkers, buffer int, sink ports.Broadcaster, log zerolog.Logger) *Emitter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	e := &Emitter{
		workers: make([]chan emission, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range e.workers {
		e.workers[i] = make(chan emission, buffer)
	}
	return e
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (e *Emitter) Start(ctx context.Context) {
	for i, ch := range e.workers {
		e.wg.Add(1)
		go e.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (e *Emitter) Wait() {
	e.wg.Wait()
}

// Broadcast implements ports.Broadcaster. It never blocks: when the worker
// responsible for group is saturated the event is dropped.
func (e *Emitter) Broadcast(group string, event domain.RealtimeEvent) {
	idx := e.shardIndex(group)
	select {
	case e.workers[idx] <- emission{group: group, event: event}:
		metrics.EmitQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(e.workers[idx])))
	default:
		metrics.RealtimeEventsTotal.WithLabelValues("dropped").Inc()
		e.log.Warn().Str("group", group).Int("worker_id", idx).Msg("emit queue full, event dropped")
	}
}

// shardIndex maps a group deterministically to a worker index.
func (e *Emitter) shardIndex(group string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(group))
	return int(h.Sum32() % uint32(len(e.workers)))
}

func (e *Emitter) runWorker(ctx context.Context, id int, ch <-chan emission) {
	defer e.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case em := <-ch:
			metrics.EmitQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			e.sink.Broadcast(em.group, em.event)
		}
	}
}
