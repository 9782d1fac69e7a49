package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

const Topic = "storefront.change-events"

// Event is a change notification from the backing store: which table changed
// and, when known, which row.
type Event struct {
	Table string `json:"table"`
	ID    string `json:"id,omitempty"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Hub fans change events out to subscribers. Callers only see "my callback
// fires when the table changes"; the Kafka transport stays in here.
type Hub struct {
	reader messageReader
	log    *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(Event)
}

func NewHub(log *slog.Logger, brokers ...string) *Hub {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "storefront-notify",
		MaxBytes: 10e6, // 10MB
	})
	return newHub(reader, log)
}

func newHub(reader messageReader, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		reader: reader,
		log:    log,
		subs:   make(map[string]map[int]func(Event)),
	}
}

// Subscription cancels one subscriber.
type Subscription struct {
	cancel func()
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Subscribe registers fn for change events on table. The callback runs on
// the hub's reader goroutine and must not block.
func (h *Hub) Subscribe(table string, fn func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[table] == nil {
		h.subs[table] = make(map[int]func(Event))
	}
	h.subs[table][id] = fn

	return &Subscription{cancel: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[table], id)
	}}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		h.readAndDispatch(ctx)
	}
}

func (h *Hub) Close() {
	if err := h.reader.Close(); err != nil {
		h.log.Warn("error closing kafka reader", slog.Any("err", err))
	}
}

func (h *Hub) readAndDispatch(ctx context.Context) {
	m, err := h.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			h.log.Error("error reading change event", slog.Any("err", err))
		}
		return
	}

	var event Event
	if errUnmarshal := json.Unmarshal(m.Value, &event); errUnmarshal != nil {
		h.log.Error("error parsing change event", slog.Any("err", errUnmarshal))
		return
	}
	if event.Table == "" {
		h.log.Warn("change event missing table")
		return
	}

	h.dispatch(event)
}

func (h *Hub) dispatch(event Event) {
	h.mu.Lock()
	callbacks := make([]func(Event), 0, len(h.subs[event.Table]))
	for _, fn := range h.subs[event.Table] {
		callbacks = append(callbacks, fn)
	}
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
