package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestRequestShape(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"action":"ANSWER_CONTENT"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})

	t.Run("quick reply", func(t *testing.T) {
		_, err := client.Ingest(context.Background(), IngestRequest{
			SessionID: "ui-abc",
			Action:    ActionContinue,
			Message:   "No",
		})
		require.NoError(t, err)
		assert.Equal(t, "/session/ingest", gotPath)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, map[string]any{
			"session_id": "ui-abc",
			"action":     "continue",
			"message":    "No",
		}, gotBody)
	})

	t.Run("answer carries question id, no message", func(t *testing.T) {
		_, err := client.Ingest(context.Background(), IngestRequest{
			SessionID:  "ui-abc",
			Action:     ActionAnswer,
			QuestionID: "q-7",
			Answer:     "O(n log n)",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"session_id":  "ui-abc",
			"action":      "answer",
			"question_id": "q-7",
			"answer":      "O(n log n)",
		}, gotBody)
		assert.NotContains(t, gotBody, "message")
	})
}

func TestIngestServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Ingest(context.Background(), IngestRequest{SessionID: "s", Action: ActionStart})
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadGateway, svcErr.Status)
}

func TestIngestInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"wrong field type", `{"action":42}`},
		{"question missing prompt", `{"action":"ASK_QUESTION","ui":{"question":{"id":"q1"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(Config{BaseURL: server.URL})
			_, err := client.Ingest(context.Background(), IngestRequest{SessionID: "s", Action: ActionStart})
			require.Error(t, err)

			var invalid *InvalidResponseError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestIngestNormalizesNilUI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"action":"ADVANCE","ui":null,"confidence":"high"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	res, err := client.Ingest(context.Background(), IngestRequest{SessionID: "s", Action: ActionContinue})
	require.NoError(t, err)
	require.NotNil(t, res.UI)
	assert.Equal(t, "ADVANCE", res.Action)
	assert.Equal(t, "high", res.Confidence)
}

func TestNextStep(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/session/next", r.URL.Path)
		assert.Equal(t, "ui-x y", r.URL.Query().Get("session_id"))
		_, _ = w.Write([]byte(`{"action":"ASK_QUESTION","ui":{"question":{"id":"q1","prompt":"Big-O of merge sort?","choices":["O(n)","O(n log n)"]}}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	res, err := client.NextStep(context.Background(), "ui-x y")
	require.NoError(t, err)
	require.NotNil(t, res.UI.Question)
	assert.Equal(t, "q1", res.UI.Question.ID)
	assert.Len(t, res.UI.Question.Choices, 2)
}

func TestResetSessionReturnsRawAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/reset", r.URL.Path)
		assert.Equal(t, "ui-abc", r.URL.Query().Get("session_id"))
		_, _ = w.Write([]byte(`{"ok":true,"whatever":"shape"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	raw, err := client.ResetSession(context.Background(), "ui-abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"whatever":"shape"}`, string(raw))
}

func TestTrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/"})
	_, err := client.Ingest(context.Background(), IngestRequest{SessionID: "s", Action: ActionStart})
	require.NoError(t, err)
	assert.Equal(t, "/session/ingest", gotPath)
}
