package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSender_Send(t *testing.T) {
	var got pushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":1}`))
	}))
	defer server.Close()

	sender := NewPushSender("server-key")
	sender.endpoint = server.URL
	sender.httpClient = server.Client()

	err := sender.Send(context.Background(), "device-token", "Added to a bill", "You were added to Dinner", map[string]string{"bill_id": "abc"})
	require.NoError(t, err)

	assert.Equal(t, "device-token", got.To)
	assert.Equal(t, "Added to a bill", got.Notification.Title)
	assert.Equal(t, "You were added to Dinner", got.Notification.Body)
	assert.Equal(t, "abc", got.Data["bill_id"])
}

func TestPushSender_Unconfigured(t *testing.T) {
	sender := NewPushSender("")

	err := sender.Send(context.Background(), "device-token", "title", "body", nil)
	assert.ErrorIs(t, err, ErrPushNotConfigured)
}

func TestPushSender_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewPushSender("bad-key")
	sender.endpoint = server.URL
	sender.httpClient = server.Client()

	err := sender.Send(context.Background(), "device-token", "title", "body", nil)
	assert.ErrorContains(t, err, "status 401")
}
