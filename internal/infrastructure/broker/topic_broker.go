package broker

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscriber receives payloads published on the topics it joined.
// Deliver must not block; a subscriber that cannot keep up handles that on its
// own side.
type Subscriber interface {
	ID() string
	Deliver(payload []byte) error
}

// TopicBroker fans payloads out to the subscribers of a topic.
type TopicBroker struct {
	mu     sync.RWMutex
	topics map[string]map[string]Subscriber
	joined map[string]map[string]struct{} // subscriber id -> topics
	logger logrus.FieldLogger
}

func NewTopicBroker(logger logrus.FieldLogger) *TopicBroker {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &TopicBroker{
		topics: make(map[string]map[string]Subscriber),
		joined: make(map[string]map[string]struct{}),
		logger: logger,
	}
}

// Subscribe adds sub to topic. Subscribing twice is a no-op.
func (b *TopicBroker) Subscribe(topic string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		b.topics[topic] = subs
	}
	subs[sub.ID()] = sub

	t, ok := b.joined[sub.ID()]
	if !ok {
		t = make(map[string]struct{})
		b.joined[sub.ID()] = t
	}
	t[topic] = struct{}{}
}

// Unsubscribe removes subscriber id from topic.
func (b *TopicBroker) Unsubscribe(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(topic, id)
}

// UnsubscribeAll removes subscriber id from every topic and returns how many it left.
func (b *TopicBroker) UnsubscribeAll(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for topic := range b.joined[id] {
		b.remove(topic, id)
		n++
	}
	delete(b.joined, id)
	return n
}

// caller holds b.mu
func (b *TopicBroker) remove(topic, id string) {
	if subs, ok := b.topics[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
	if t, ok := b.joined[id]; ok {
		delete(t, topic)
		if len(t) == 0 {
			delete(b.joined, id)
		}
	}
}

// Publish delivers payload to everyone subscribed to topic when the call
// starts and returns the number of successful deliveries. Subscribers that
// join while delivery is in progress may miss the payload.
func (b *TopicBroker) Publish(topic string, payload []byte) int {
	b.mu.RLock()
	snapshot := make([]Subscriber, 0, len(b.topics[topic]))
	for _, sub := range b.topics[topic] {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range snapshot {
		if err := sub.Deliver(payload); err != nil {
			b.logger.WithFields(logrus.Fields{
				"topic":      topic,
				"subscriber": sub.ID(),
				"error":      err.Error(),
			}).Warn("delivery dropped")
			continue
		}
		delivered++
	}
	return delivered
}

// SubscriberCount reports the current subscribers of topic.
func (b *TopicBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics reports how many topics have at least one subscriber.
func (b *TopicBroker) Topics() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics)
}
