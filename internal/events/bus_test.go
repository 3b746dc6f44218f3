package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tarekulislam03/medix-v1-sub001/internal/events"
)

type stubStore struct {
	lastTopic   string
	lastPayload []byte
}

func (s *stubStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	s.lastTopic = topic
	s.lastPayload = payload
	return events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}, nil
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	payload := map[string]any{"saleId": "123"}
	event, err := bus.Emit(context.Background(), events.TopicSaleCompleted, aggregate, payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicSaleCompleted, store.lastTopic)
	require.JSONEq(t, `{"saleId":"123"}`, string(store.lastPayload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "123", decoded["saleId"])
}

func TestEmitRejectsMissingTopic(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)
}

func TestEmitRejectsInvalidPayload(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), events.TopicImportCommitted, uuid.New(), []byte("{not json"))
	require.Error(t, err)
}
