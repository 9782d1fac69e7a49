package notify

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type fakeReader struct {
	messages []kafka.Message
	pos      int
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if f.pos >= len(f.messages) {
		return kafka.Message{}, context.Canceled
	}
	m := f.messages[f.pos]
	f.pos++
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

func TestHub_DispatchesToMatchingTable(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`{"table":"products","id":"p1"}`)},
		{Value: []byte(`{"table":"favorites"}`)},
	}}
	sut := newHub(reader, nil)

	var productIDs []string
	var favoriteHits int
	sut.Subscribe("products", func(e Event) { productIDs = append(productIDs, e.ID) })
	sut.Subscribe("favorites", func(Event) { favoriteHits++ })

	sut.readAndDispatch(context.Background())
	sut.readAndDispatch(context.Background())

	assert.Equal(t, []string{"p1"}, productIDs)
	assert.Equal(t, 1, favoriteHits)
}

func TestHub_CancelledSubscriptionStopsFiring(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`{"table":"products","id":"p1"}`)},
		{Value: []byte(`{"table":"products","id":"p2"}`)},
	}}
	sut := newHub(reader, nil)

	var hits int
	sub := sut.Subscribe("products", func(Event) { hits++ })

	sut.readAndDispatch(context.Background())
	sub.Cancel()
	sub.Cancel() // second cancel is harmless
	sut.readAndDispatch(context.Background())

	assert.Equal(t, 1, hits)
}

func TestHub_IgnoresMalformedEvents(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`not json`)},
		{Value: []byte(`{"id":"p1"}`)}, // missing table
	}}
	sut := newHub(reader, nil)

	var hits int
	sut.Subscribe("products", func(Event) { hits++ })

	sut.readAndDispatch(context.Background())
	sut.readAndDispatch(context.Background())

	assert.Equal(t, 0, hits)
}
