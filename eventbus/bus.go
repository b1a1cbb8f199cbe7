// Package eventbus fans events out to registered handlers. The engine uses
// it as the notification sink for step lifecycle events, subscribers observe
// progress but can never affect control flow.
package eventbus

import (
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Event you can subscribe to
type Event struct {
	Name string
	At   time.Time
	Args interface{}
}

// EventHandler deals with handling events
type EventHandler interface {
	On(Event) error
}

// NOOPHandler drops events on the floor without taking action
var NOOPHandler = Handler(func(_ Event) error { return nil })

// Handler wraps a function so it can be used as an event handler.
// Errors produced by the wrapped function are logged by the bus the
// handler is subscribed on.
func Handler(on func(Event) error) EventHandler {
	return &funcHandler{on: on}
}

type funcHandler struct {
	on func(Event) error
}

func (h *funcHandler) On(event Event) error {
	return h.on(event)
}

// EventPredicate for filtering events
type EventPredicate func(Event) bool

// Filtered composes an event handler with a filter, only matching events
// reach the next handler
func Filtered(matches EventPredicate, next EventHandler) EventHandler {
	return &filteredHandler{matches: matches, next: next}
}

type filteredHandler struct {
	next    EventHandler
	matches EventPredicate
}

func (f *filteredHandler) On(evt Event) error {
	if !f.matches(evt) {
		return nil
	}
	return f.next.On(evt)
}

// EventBus does fanout to registered handlers
type EventBus interface {
	Close() error
	Publish(Event)
	Subscribe(...EventHandler)
	Unsubscribe(...EventHandler)
	Len() int
}

// New event bus with the specified logger
func New(log logrus.FieldLogger) EventBus {
	return NewWithTimeout(log, 100*time.Millisecond)
}

// NewWithTimeout creates a new event bus with a timeout after which
// delivery to a wedged subscriber is abandoned
func NewWithTimeout(log logrus.FieldLogger, timeout time.Duration) EventBus {
	if log == nil {
		log = logrus.New().WithFields(nil)
	}
	bus := &defaultEventBus{
		events:  make(chan Event, 100),
		done:    make(chan struct{}),
		closed:  make(chan struct{}),
		log:     log,
		timeout: timeout,
	}
	go bus.dispatch()
	return bus
}

type defaultEventBus struct {
	mu   sync.RWMutex
	subs []*subscriber

	events   chan Event
	done     chan struct{}
	closed   chan struct{}
	log      logrus.FieldLogger
	timeout  time.Duration
	inFlight sync.WaitGroup
}

func (e *defaultEventBus) dispatch() {
	timer := metrics.GetOrRegisterTimer("events.notify", metrics.DefaultRegistry)
	for {
		select {
		case evt := <-e.events:
			e.log.Debugf("dispatching event %+v", evt)
			e.inFlight.Add(1)
			go timer.Time(func() {
				defer e.inFlight.Done()
				e.broadcast(evt)
			})
		case <-e.done:
			e.inFlight.Wait()

			e.mu.Lock()
			for _, sub := range e.subs {
				sub.stop()
			}
			e.subs = nil
			e.mu.Unlock()

			e.log.Debug("event bus closed")
			close(e.closed)
			return
		}
	}
}

func (e *defaultEventBus) broadcast(evt Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.subs) == 0 {
		e.log.Debugf("no active listeners, skipping broadcast")
		return
	}

	e.log.Debugf("notifying %d listeners", len(e.subs))
	var wg sync.WaitGroup
	for _, sub := range e.subs {
		wg.Add(1)
		go func(sub *subscriber) {
			defer wg.Done()
			if !sub.offer(evt, e.timeout) {
				e.log.Warnf("failed to send event %+v to listener within %v", evt, e.timeout)
			}
		}(sub)
	}
	wg.Wait()
}

// Publish an event to all interested subscribers
func (e *defaultEventBus) Publish(evt Event) {
	e.events <- evt
}

// Subscribe to events published in the bus
func (e *defaultEventBus) Subscribe(handlers ...EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Debugf("adding %d listeners", len(handlers))
	for _, handler := range handlers {
		sub := newSubscriber(handler, func(err error) { e.log.Errorln(err) })
		e.subs = append(e.subs, sub)
	}
}

func (e *defaultEventBus) Unsubscribe(handlers ...EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Debugf("removing %d listeners", len(handlers))
	for _, handler := range handlers {
		for i, sub := range e.subs {
			if sub.handler == handler {
				sub.stop()
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
	}
}

func (e *defaultEventBus) Close() error {
	close(e.done)
	<-e.closed
	return nil
}

func (e *defaultEventBus) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

func newSubscriber(handler EventHandler, onError func(error)) *subscriber {
	sub := &subscriber{
		handler:  handler,
		listener: make(chan Event),
	}
	go func() {
		for evt := range sub.listener {
			if err := handler.On(evt); err != nil {
				onError(err)
			}
		}
	}()
	return sub
}

type subscriber struct {
	handler  EventHandler
	listener chan Event
	once     sync.Once
}

// offer hands the event to the subscriber, giving up after the timeout
func (s *subscriber) offer(evt Event, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case s.listener <- evt:
		return true
	case <-timer.C:
		return false
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.listener) })
}
