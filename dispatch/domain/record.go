package domain

import "time"

// Outcome é o estado terminal de uma requisição.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeEmptyPayload     Outcome = "empty_payload"
	OutcomeTransportError   Outcome = "transport_error"
	OutcomeAdmissionTimeout Outcome = "admission_timeout"
	OutcomeCanceled         Outcome = "canceled"
)

// Record é a contabilidade de uma requisição admitida.
//
// É local à goroutine que atende a conexão e não é guardado depois que a
// resposta é enviada (exceto pelos RecordSink, que recebem uma cópia).
type Record struct {
	// Sequence é 0 quando a requisição falhou antes de ser sequenciada.
	Sequence   uint64
	RequestID  string
	Worker     string
	RemoteAddr string
	FirstLine  string

	QueueWait  time.Duration
	Processing time.Duration
	Total      time.Duration

	// Mode é o modo lido no início da fase de trabalho simulado.
	Mode    Mode
	Outcome Outcome
	Err     error

	At time.Time
}

// Succeeded é um atalho para Outcome == OutcomeSuccess.
func (r Record) Succeeded() bool { return r.Outcome == OutcomeSuccess }
