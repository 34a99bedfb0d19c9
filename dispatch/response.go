package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"scheduler-sim/dispatch/domain"
)

type workResponse struct {
	Status         string  `json:"status"`
	RequestNumber  uint64  `json:"request_number"`
	ThreadName     string  `json:"thread_name"`
	RequestID      string  `json:"request_id"`
	QueueWaitTime  float64 `json:"queue_wait_time"`
	ProcessingTime float64 `json:"processing_time"`
	TotalTime      float64 `json:"total_time"`
	SchedulingMode string  `json:"scheduling_mode"`
	Message        string  `json:"message"`
}

type controlResponse struct {
	Status         string `json:"status"`
	SchedulingMode string `json:"scheduling_mode"`
}

type rejectResponse struct {
	Status         string  `json:"status"`
	Reason         string  `json:"reason"`
	RequestID      string  `json:"request_id"`
	QueueWaitTime  float64 `json:"queue_wait_time"`
	SchedulingMode string  `json:"scheduling_mode"`
}

func newWorkResponse(rec domain.Record) workResponse {
	mode := rec.Mode.String()
	return workResponse{
		Status:         "success",
		RequestNumber:  rec.Sequence,
		ThreadName:     rec.Worker,
		RequestID:      rec.RequestID,
		QueueWaitTime:  roundSeconds(rec.QueueWait),
		ProcessingTime: roundSeconds(rec.Processing),
		TotalTime:      roundSeconds(rec.Total),
		SchedulingMode: mode,
		Message:        fmt.Sprintf("Processed successfully using %s scheduling.", mode),
	}
}

// writeJSON escreve uma resposta HTTP/1.1 completa com corpo JSON.
func writeJSON(w io.Writer, status int, body any, extra http.Header) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))
	buf.WriteString("Content-Type: application/json\r\n")
	buf.WriteString("Access-Control-Allow-Origin: *\r\n")
	buf.WriteString("Content-Length: " + formatInt(len(payload)) + "\r\n")
	buf.WriteString("Connection: close\r\n")
	for k, vs := range extra {
		for _, v := range vs {
			buf.WriteString(k + ": " + v + "\r\n")
		}
	}
	buf.WriteString("\r\n")
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}
