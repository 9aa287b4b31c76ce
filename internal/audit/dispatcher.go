package audit

import (
	"sync"

	"go.uber.org/zap"
)

const (
	ActionOrderCreated  = "order.created"
	ActionOrderUpdated  = "order.updated"
	ActionOrderDeleted  = "order.deleted"
	ActionOrderConflict = "order.conflict"

	EntityOrder = "order"
)

type Event struct {
	ActorID  *string
	Action   string
	Entity   string
	EntityID string
	Metadata any
}

// Sink persists a single event.
type Sink interface {
	Write(ev Event) error
}

// Dispatcher hands events to a background worker. Events are dropped when the
// queue is full so that requests never wait on the audit trail.
type Dispatcher struct {
	sink  Sink
	log   *zap.SugaredLogger
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, log *zap.SugaredLogger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}

	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.sink.Write(ev); err != nil {
			d.log.Errorw("audit write failed",
				"action", ev.Action,
				"entity_id", ev.EntityID,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warnw("audit queue full, dropping event", "action", ev.Action, "entity_id", ev.EntityID)
	}
}

// Close stops accepting events and waits until the queued ones are written.
// Dispatch must not be called after Close.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
