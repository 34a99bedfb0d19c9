package dispatch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_FramesHTTPResponse(t *testing.T) {
	rec := domain.Record{
		Sequence:   4,
		RequestID:  "abc",
		Worker:     "Worker-4",
		QueueWait:  1234 * time.Millisecond,
		Processing: 3006 * time.Millisecond,
		Total:      4240 * time.Millisecond,
		Mode:       domain.ModeFIFO,
		Outcome:    domain.OutcomeSuccess,
	}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, http.StatusOK, newWorkResponse(rec), nil))

	resp, err := http.ReadResponse(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), resp.ContentLength)
	assert.JSONEq(t, `{
		"status": "success",
		"request_number": 4,
		"thread_name": "Worker-4",
		"request_id": "abc",
		"queue_wait_time": 1.23,
		"processing_time": 3.01,
		"total_time": 4.24,
		"scheduling_mode": "FIFO",
		"message": "Processed successfully using FIFO scheduling."
	}`, string(body))
}

func TestWriteJSON_ExtraHeaders(t *testing.T) {
	var buf bytes.Buffer
	h := http.Header{}
	h.Set("Retry-After", retryAfterSeconds(2500*time.Millisecond))
	require.NoError(t, writeJSON(&buf, http.StatusTooManyRequests, controlResponse{Status: "x"}, h))

	resp, err := http.ReadResponse(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("Retry-After"))

	var got controlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "x", got.Status)
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 0.0, roundSeconds(4*time.Millisecond))
	assert.Equal(t, 0.01, roundSeconds(6*time.Millisecond))
	assert.Equal(t, 3.0, roundSeconds(2999*time.Millisecond))
	assert.Equal(t, "1", retryAfterSeconds(100*time.Millisecond))
}
