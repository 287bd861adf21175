package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(JobUpserted("j1", true))

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	require.Equal(t, <-a, <-b)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	// the channel is closed and no longer receives
	_, open := <-ch
	require.False(t, open)
	h.Publish(SessionFinished("s1", "completed", 5, 2))
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < 32; i++ {
		h.Publish(ApplicationUpdated("a1", "submitted"))
	}
	// buffer is 16; the rest were dropped, not blocked on
	require.Len(t, ch, 16)
}

func TestEventEnvelope(t *testing.T) {
	raw := JobUpserted("4012345678", true)

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	require.Equal(t, "job_upserted", evt.Type)
	require.False(t, evt.At.IsZero())

	var data map[string]any
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	require.Equal(t, "4012345678", data["job_id"])
	require.Equal(t, true, data["new"])
}
