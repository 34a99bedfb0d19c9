package domain

import (
	"context"
	"errors"
)

// Taxonomia de erros de uma requisição. Todos ficam isolados na conexão que
// os gerou; nenhum derruba o loop de aceitação.
var (
	// ErrEmptyPayload: a conexão não enviou nenhum byte.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrTransport: falha de leitura/escrita (ou pânico) durante o atendimento.
	ErrTransport = errors.New("transport error")
	// ErrInvalidMode: token de modo desconhecido no caminho de controle.
	ErrInvalidMode = errors.New("invalid scheduling mode")
	// ErrAdmissionTimeout: a vaga não foi concedida dentro do timeout configurado.
	ErrAdmissionTimeout = errors.New("admission timeout")
)

// Classify traduz um erro qualquer para o Outcome correspondente.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrEmptyPayload):
		return OutcomeEmptyPayload
	case errors.Is(err, ErrAdmissionTimeout):
		return OutcomeAdmissionTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeTransportError
	}
}
