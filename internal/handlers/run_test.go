package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/heist-engine/pkg/heist"
	queuePkg "github.com/jwebster45206/heist-engine/pkg/queue"
)

type stubProcessor struct {
	report *heist.Report
	err    error
	last   *queuePkg.Request
}

func (s *stubProcessor) Process(ctx context.Context, req *queuePkg.Request) (*heist.Report, error) {
	s.last = req
	return s.report, s.err
}

func TestRunHandler_Success(t *testing.T) {
	stub := &stubProcessor{report: &heist.Report{HeistID: "counting_house", Success: true}}
	handler := NewRunHandler(testLogger(), stub)

	saveID := uuid.New()
	body, _ := json.Marshal(RunRequest{SaveID: saveID, HeistID: "counting_house", Participants: []string{"silas"}})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/run", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var report heist.Report
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.True(t, report.Success)

	require.NotNil(t, stub.last)
	assert.Equal(t, saveID, stub.last.SaveID)
	assert.Equal(t, []string{"silas"}, stub.last.Participants)
}

func TestRunHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		err      error
		expected int
	}{
		{"processor rejects", mustRunBody(t, uuid.New(), "counting_house"), errors.New("heist not found"), http.StatusBadRequest},
		{"missing heist id", mustRunBody(t, uuid.New(), ""), nil, http.StatusBadRequest},
		{"missing save id", mustRunBody(t, uuid.Nil, "counting_house"), nil, http.StatusBadRequest},
		{"invalid json", []byte("{"), nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubProcessor{err: tt.err}
			handler := NewRunHandler(testLogger(), stub)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/run", bytes.NewReader(tt.body)))
			assert.Equal(t, tt.expected, rr.Code)
		})
	}

	// Wrong method
	stub := &stubProcessor{}
	handler := NewRunHandler(testLogger(), stub)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/run", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func mustRunBody(t *testing.T, saveID uuid.UUID, heistID string) []byte {
	t.Helper()
	body, err := json.Marshal(RunRequest{SaveID: saveID, HeistID: heistID})
	require.NoError(t, err)
	return body
}
