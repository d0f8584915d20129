package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventTicketAssigned, 1, 2, nil)))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDecodeEventKeepsPayloadRaw(t *testing.T) {
	data, err := json.Marshal(NewEvent(EventTicketStatusChanged, 9, 3, TicketStatusChangedPayload{NewStatusID: 4, NewStatusName: "Closed", Closed: true}))
	require.NoError(t, err)

	event, raw, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, EventTicketStatusChanged, event.Type)
	assert.Equal(t, int64(9), event.TicketID)
	assert.NotEmpty(t, event.ID)

	var payload TicketStatusChangedPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.True(t, payload.Closed)

	_, _, err = DecodeEvent([]byte(`{"ticket_id":1}`))
	assert.Error(t, err)
}
