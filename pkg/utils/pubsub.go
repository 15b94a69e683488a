package utils

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

const topicBuffer = 16

type Topic[T any] struct {
	subscribers map[*Subscriber[T]]struct{}
	mutex       deadlock.Mutex
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[*Subscriber[T]]struct{}),
	}
}

// Publish blocks until every subscriber has room for the value or has
// called Done.
func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for subscriber := range t.subscribers {
		select {
		case subscriber.channel <- value:
		case <-subscriber.done:
		}
	}
}

type Subscriber[T any] struct {
	channel  chan T
	done     chan struct{}
	doneOnce sync.Once
	topic    *Topic[T]
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	subscriber := &Subscriber[T]{
		channel: make(chan T, topicBuffer),
		done:    make(chan struct{}),
		topic:   t,
	}

	t.mutex.Lock()
	t.subscribers[subscriber] = struct{}{}
	t.mutex.Unlock()

	return subscriber
}

func (s *Subscriber[T]) Recv() <-chan T {
	return s.channel
}

func (s *Subscriber[T]) Done() {
	s.doneOnce.Do(func() {
		close(s.done)
	})

	topic := s.topic
	topic.mutex.Lock()
	delete(topic.subscribers, s)
	topic.mutex.Unlock()
}
