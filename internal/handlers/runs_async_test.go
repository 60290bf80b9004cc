package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/heist-engine/internal/queue"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

func asyncFixture(t *testing.T) (*AsyncRunHandler, *queue.RunQueue) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := queue.NewClient(mr.Addr(), "", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rq := queue.NewRunQueue(client, testLogger())
	return NewAsyncRunHandler(testLogger(), rq), rq
}

func TestAsyncRunHandler_EnqueueAndPoll(t *testing.T) {
	handler, rq := asyncFixture(t)
	ctx := context.Background()

	body, _ := json.Marshal(RunRequest{SaveID: uuid.New(), HeistID: "counting_house", Participants: []string{"silas"}})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rr.Code)

	var ack EnqueueResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ack))
	assert.NotEmpty(t, ack.RequestID)
	assert.Equal(t, "queued", ack.Status)

	depth, err := rq.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	// No report yet: poll comes back pending.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+ack.RequestID, nil))
	require.Equal(t, http.StatusAccepted, rr.Code)

	var pending EnqueueResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&pending))
	assert.Equal(t, "pending", pending.Status)

	// Worker lands a report: poll returns it.
	require.NoError(t, rq.SaveReport(ctx, ack.RequestID, &heist.Report{HeistID: "counting_house", Success: true}))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+ack.RequestID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var report heist.Report
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.True(t, report.Success)
}

func TestAsyncRunHandler_BadRequests(t *testing.T) {
	handler, _ := asyncFixture(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/runs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
