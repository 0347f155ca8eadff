package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// TopicInfo documents a typed topic for the topics listing.
type TopicInfo struct {
	Name          string
	Module        string
	Description   string
	TypeName      string
	PayloadFields []string
}

var catalog = struct {
	mu     sync.RWMutex
	topics map[string]TopicInfo
}{topics: make(map[string]TopicInfo)}

// Event[T] wraps a topic name and provides type-safe publishing.
type Event[T any] struct {
	topicName string
}

// NewEvent creates a typed event and records it in the topic catalog. The
// payload fields are read from T's json tags.
func NewEvent[T any](name string, description string) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	info := TopicInfo{
		Name:        name,
		Description: description,
	}
	if module, _, ok := strings.Cut(name, "."); ok {
		info.Module = module
	}
	if t != nil {
		info.TypeName = t.Name()
		if t.Kind() == reflect.Struct {
			for i := 0; i < t.NumField(); i++ {
				tag := t.Field(i).Tag.Get("json")
				if tag == "" || tag == "-" {
					continue
				}
				field, _, _ := strings.Cut(tag, ",")
				info.PayloadFields = append(info.PayloadFields, field)
			}
		}
	}

	catalog.mu.Lock()
	catalog.topics[name] = info
	catalog.mu.Unlock()

	return Event[T]{topicName: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Topics lists every typed topic created so far, sorted by name.
func Topics() []TopicInfo {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	out := make([]TopicInfo, 0, len(catalog.topics))
	for _, info := range catalog.topics {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
	})
}

// Subscribe decodes every message on the event's topic into T before
// calling fn. Undecodable payloads are reported as handler errors.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], fn func(ctx context.Context, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Name(), err)
		}
		return fn(ctx, payload)
	})
}
