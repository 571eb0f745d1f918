package events

import "sync"

const defaultBufferSize = 64

// Event is one published payload tagged with its topic
type Event struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Emitter is a topic-keyed fan-out bus. Any number of producers publish
// and any number of subscribers listen; subscribers registered after a
// publish do not receive it retroactively. Delivery order within one
// topic follows publish order for each subscriber. A slow subscriber
// loses its oldest buffered event, never the newest, so a job's
// terminal event always lands after its surviving progress events.
type Emitter struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	size int
}

// Subscription is one registered listener. C carries events until Close
// is called; Close is safe to call more than once.
type Subscription struct {
	C chan Event

	emitter *Emitter
	topics  []string
	once    sync.Once
}

// NewEmitter creates an emitter with the default per-subscriber buffer
func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[string]map[*Subscription]struct{}),
		size: defaultBufferSize,
	}
}

// Subscribe registers a listener for the given topics. The caller owns
// the returned subscription and must Close it on teardown.
func (e *Emitter) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		C:       make(chan Event, e.size),
		emitter: e,
		topics:  topics,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, topic := range topics {
		if e.subs[topic] == nil {
			e.subs[topic] = make(map[*Subscription]struct{})
		}
		e.subs[topic][sub] = struct{}{}
	}
	return sub
}

// Publish delivers the payload to every current subscriber of the topic
func (e *Emitter) Publish(topic string, payload interface{}) {
	ev := Event{Topic: topic, Payload: payload}

	e.mu.Lock()
	defer e.mu.Unlock()
	for sub := range e.subs[topic] {
		select {
		case sub.C <- ev:
		default:
			// Buffer full: evict the oldest event so the new one fits.
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- ev:
			default:
			}
		}
	}
}

// Close unregisters the subscription and closes its channel
func (s *Subscription) Close() {
	s.once.Do(func() {
		e := s.emitter
		e.mu.Lock()
		for _, topic := range s.topics {
			delete(e.subs[topic], s)
			if len(e.subs[topic]) == 0 {
				delete(e.subs, topic)
			}
		}
		e.mu.Unlock()
		close(s.C)
	})
}
