package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modelReply builds a generateContent response whose single part is text
func modelReply(text string) string {
	reply := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "test-key")
	c.httpClient = server.Client()
	return c
}

func TestStructureReceipt_HappyPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "COFFEE 4.50")

		w.Write([]byte(modelReply(`{"items":[{"name":"Coffee","price":4.50},{"name":"Bagel","price":3.25}],"tax":0.62,"tip":null,"total":8.37}`)))
	})

	result, err := client.StructureReceipt(context.Background(), "COFFEE 4.50\nBAGEL 3.25\nTAX 0.62\nTOTAL 8.37")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, DraftItem{Name: "Coffee", PriceCents: 450}, result.Items[0])
	assert.Equal(t, DraftItem{Name: "Bagel", PriceCents: 325}, result.Items[1])
	require.NotNil(t, result.TaxCents)
	assert.Equal(t, int64(62), *result.TaxCents)
	assert.Nil(t, result.TipCents)
	require.NotNil(t, result.TotalCents)
	assert.Equal(t, int64(837), *result.TotalCents)
}

func TestStructureReceipt_StripsMarkdownFences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply("```json\n{\"items\":[{\"name\":\"Soup\",\"price\":9.99}],\"tax\":null,\"tip\":null,\"total\":null}\n```")))
	})

	result, err := client.StructureReceipt(context.Background(), "SOUP 9.99")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(999), result.Items[0].PriceCents)
	assert.Nil(t, result.TaxCents)
}

func TestStructureReceipt_GarbageReplyIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelReply("sorry, I cannot read this receipt")))
	})

	_, err := client.StructureReceipt(context.Background(), "???")
	assert.ErrorIs(t, err, ErrParse)
}

func TestStructureReceipt_EmptyCandidatesIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.StructureReceipt(context.Background(), "text")
	assert.ErrorIs(t, err, ErrParse)
}

func TestStructureReceipt_UpstreamErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})

	_, err := client.StructureReceipt(context.Background(), "text")
	require.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStructureReceipt_Unconfigured(t *testing.T) {
	client := NewClient("http://unused", "")

	_, err := client.StructureReceipt(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
