package pubsub

import (
	"log"
	"sync"

	"f1lapcompare/pkg/model"
)

const (
	TopicSessionLoaded = "session.loaded"

	subscriberBuffer = 8
)

// SessionLoadedPubSub carries a SessionLoaded event every time the store
// loads a session from the provider.
var SessionLoadedPubSub = NewPubSub[model.SessionLoaded]()

type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, subscriberBuffer)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes ch from topic and closes it.
func (ps *PubSub[T]) Unsubscribe(topic string, ch <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.subs[topic]
	for i, c := range subs {
		if c == ch {
			ps.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(c)
			return
		}
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the message.
func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		default:
			log.Printf("pubsub: dropping message on %s, subscriber is full\n", topic)
		}
	}
}
