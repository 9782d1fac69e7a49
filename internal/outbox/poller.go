package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/YadneshBamne/HoLo/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const (
	Topic     = "storefront.order-events"
	batchSize = 100
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Poller drains unpublished outbox events from the orders repository and
// publishes them to Kafka. Delivery is at-least-once: an event is only
// marked processed after a successful publish.
type Poller struct {
	tick    time.Duration
	repo    orders.Repository
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[any]
	log     *slog.Logger
}

func NewPoller(repo orders.Repository, log *slog.Logger, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newPoller(repo, w, log)
}

func newPoller(repo orders.Repository, writer messageWriter, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}

	st := gobreaker.Settings{Name: "outbox-kafka"}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &Poller{
		tick:    time.Second,
		repo:    repo,
		writer:  writer,
		breaker: gobreaker.NewCircuitBreaker[any](st),
		log:     log,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) Close() {
	if err := p.writer.Close(); err != nil {
		p.log.Warn("error closing kafka writer", slog.Any("err", err))
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", slog.Any("err", err))
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			p.log.Error("failed to publish outbox event",
				slog.String("event_id", event.ID.String()), slog.Any("err", errPublish))
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.log.Error("failed to mark outbox event as processed",
				slog.String("event_id", event.ID.String()), slog.Any("err", errMark))
			continue
		}
	}
}

func (p *Poller) publish(ctx context.Context, event *orders.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id, keeps per-order ordering
		Value: event.Payload,             // already JSON from the database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	return err
}
