package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/nats-io/nats.go"
)

// RecordEvent é o formato publicado no NATS para cada requisição finalizada.
type RecordEvent struct {
	RequestNumber uint64    `json:"request_number"`
	RequestID     string    `json:"request_id"`
	Worker        string    `json:"thread_name,omitempty"`
	RemoteAddr    string    `json:"remote_addr,omitempty"`
	Outcome       string    `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	Mode          string    `json:"scheduling_mode"`
	QueueWaitMs   int64     `json:"queue_wait_ms"`
	ProcessingMs  int64     `json:"processing_ms"`
	TotalMs       int64     `json:"total_ms"`
	At            time.Time `json:"at"`
}

func NewRecordEvent(rec domain.Record) RecordEvent {
	ev := RecordEvent{
		RequestNumber: rec.Sequence,
		RequestID:     rec.RequestID,
		Worker:        rec.Worker,
		RemoteAddr:    rec.RemoteAddr,
		Outcome:       string(rec.Outcome),
		Mode:          rec.Mode.String(),
		QueueWaitMs:   rec.QueueWait.Milliseconds(),
		ProcessingMs:  rec.Processing.Milliseconds(),
		TotalMs:       rec.Total.Milliseconds(),
		At:            rec.At,
	}
	if rec.Err != nil {
		ev.Error = rec.Err.Error()
	}
	return ev
}

// publisher é o subconjunto de *nats.Conn usado aqui.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publica cada Record como JSON em um subject NATS (core, sem JetStream).
type NATSPublisher struct {
	pub     publisher
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher conecta ao servidor NATS e devolve o publisher.
func NewNATSPublisher(url, subject string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{nats.Name("scheduler-sim")}, opts...)
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{pub: conn, conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) Subject() string { return p.subject }

func (p *NATSPublisher) Record(_ context.Context, rec domain.Record) error {
	data, err := json.Marshal(NewRecordEvent(rec))
	if err != nil {
		return fmt.Errorf("nats: encode record: %w", err)
	}
	if err := p.pub.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", p.subject, err)
	}
	return nil
}

// Close drena as mensagens pendentes e fecha a conexão.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
