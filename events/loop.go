package events

import (
	"github.com/lunchact/Waves/util/panics"
)

const defaultQueueSize = 256

// Handler receives dispatched events. All callbacks run on the loop's
// single goroutine, so handlers never need their own locking.
type Handler interface {
	HandleOrderAdded(event *OrderAdded)
	HandleOrderExecuted(event *OrderExecuted)
	HandleOrderCanceled(event *OrderCanceled)
}

// Loop dispatches order events to a handler from a single goroutine. It
// implements Sink, so the block diff engine can publish into it directly.
type Loop struct {
	handler Handler
	queue   chan OrderEvent
	stop    chan struct{}
	done    chan struct{}
}

// NewLoop builds a loop over the given handler. Call Start before
// publishing.
func NewLoop(handler Handler) *Loop {
	return &Loop{
		handler: handler,
		queue:   make(chan OrderEvent, defaultQueueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start spawns the dispatch goroutine.
func (l *Loop) Start() {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(l.run)
}

// Stop shuts the loop down and waits for the dispatch goroutine to drain.
// Events published after Stop are dropped.
func (l *Loop) Stop() {
	close(l.stop)
	<-l.done
}

// Publish queues an event for dispatch. It drops the event if the loop
// has stopped, and blocks if the queue is full.
func (l *Loop) Publish(event OrderEvent) {
	select {
	case l.queue <- event:
	case <-l.stop:
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case event := <-l.queue:
			l.dispatch(event)
		case <-l.stop:
			// Drain what was queued before the stop.
			for {
				select {
				case event := <-l.queue:
					l.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) dispatch(event OrderEvent) {
	switch event := event.(type) {
	case *OrderAdded:
		l.handler.HandleOrderAdded(event)
	case *OrderExecuted:
		l.handler.HandleOrderExecuted(event)
	case *OrderCanceled:
		l.handler.HandleOrderCanceled(event)
	default:
		log.Errorf("Unknown order event type %T", event)
	}
}
