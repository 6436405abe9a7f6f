package server

import (
	"log"
	"sync"

	"github.com/ajayramola/todo-app/internal/stats"
	"github.com/ajayramola/todo-app/internal/types"
)

const subscriptionBuffer = 256

// Broker routes published messages to the live subscribers of a
// conversation. It is purely in-memory: a subscriber attached after a
// publish never sees that message and must catch up through the durable
// message history instead.
type Broker struct {
	log   *log.Logger
	stats stats.StatsProvider

	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewBroker(logger *log.Logger, su stats.StatsProvider) *Broker {
	return &Broker{
		log:    logger,
		stats:  su,
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscription is the handle returned by Subscribe. Its lifecycle is
// attached then detached; Cancel is terminal and idempotent.
type Subscription struct {
	topic  string
	broker *Broker
	ch     chan *types.Message

	mu       sync.Mutex
	canceled bool
}

func (s *Subscription) Topic() string {
	return s.topic
}

// C yields published messages in publish order. It is closed when the
// subscription is canceled.
func (s *Subscription) C() <-chan *types.Message {
	return s.ch
}

// Cancel detaches the subscription from the broker. Safe to call more
// than once and after the topic has already been dropped.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.mu.Unlock()

	b := s.broker
	b.mu.Lock()
	if set, ok := b.topics[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.topics, s.topic)
		}
	}
	b.mu.Unlock()

	// no publisher holds the registry lock here, so the channel can
	// be closed without racing a send
	close(s.ch)
	b.stats.Decr(stats.ActiveSubscriptions)
}

// Subscribe attaches a new listener to topic.
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic:  topic,
		broker: b,
		ch:     make(chan *types.Message, subscriptionBuffer),
	}

	b.mu.Lock()
	set, ok := b.topics[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.topics[topic] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	b.stats.Incr(stats.ActiveSubscriptions)
	return sub
}

// Publish delivers msg to every subscription currently attached to
// topic and to no other. Subscriber channels are FIFO, so a completed
// publish is observed before any later one on the same topic.
func (b *Broker) Publish(topic string, msg *types.Message) {
	b.mu.RLock()
	for sub := range b.topics[topic] {
		select {
		case sub.ch <- msg:
		default:
			b.log.Printf("subscriber buffer full on %q, dropping message %d", topic, msg.Id)
			b.stats.Incr(stats.MessagesDropped)
		}
	}
	b.mu.RUnlock()

	b.stats.Incr(stats.MessagesPublished)
}

// NumSubscribers reports the number of live subscriptions for topic.
func (b *Broker) NumSubscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
