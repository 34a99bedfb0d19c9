package dispatch

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"scheduler-sim/dispatch/domain"
)

const minPeekSize = 16

// conn adapta um net.Conn aceito para application.Exchange.
type conn struct {
	nc           net.Conn
	br           *bufio.Reader
	id           string
	readTimeout  time.Duration
	writeTimeout time.Duration

	// mu protege os deadlines contra interrupt concorrente.
	mu          sync.Mutex
	interrupted bool
}

func newConn(nc net.Conn, id string, peekSize int, readTimeout, writeTimeout time.Duration) *conn {
	if peekSize < minPeekSize {
		peekSize = minPeekSize
	}
	return &conn{
		nc:           nc,
		br:           bufio.NewReaderSize(nc, peekSize),
		id:           id,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (c *conn) ID() string         { return c.id }
func (c *conn) RemoteAddr() string { return c.nc.RemoteAddr().String() }

func (c *conn) armRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readTimeout > 0 && !c.interrupted {
		_ = c.nc.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

func (c *conn) armWrite() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 && !c.interrupted {
		_ = c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
}

// interrupt vence os deadlines agora e impede que sejam rearmados: toda
// leitura ou escrita pendente ou futura falha com timeout.
func (c *conn) interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interrupted = true
	_ = c.nc.SetDeadline(time.Now())
}

// peekFirstLine espia os bytes iniciais sem consumi-los até achar '\n',
// encher o buffer ou o cliente parar de enviar. Só pede mais bytes ao socket
// quando o que já está no buffer não contém a quebra de linha.
func (c *conn) peekFirstLine() (string, error) {
	c.armRead()
	for {
		b, _ := c.br.Peek(c.br.Buffered())
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			return string(bytes.TrimSpace(b[:i])), nil
		}
		if len(b) >= c.br.Size() {
			return string(bytes.TrimSpace(b)), nil
		}
		if _, err := c.br.Peek(len(b) + 1); err != nil {
			b, _ = c.br.Peek(c.br.Buffered())
			return string(bytes.TrimSpace(b)), err
		}
	}
}

// ReadPayload lê o que já chegou (até o tamanho do buffer). Sem nenhum byte
// devolve (nil, io.EOF).
func (c *conn) ReadPayload() ([]byte, error) {
	c.armRead()
	if _, err := c.br.Peek(1); err != nil {
		return nil, err
	}
	buf := make([]byte, c.br.Buffered())
	if _, err := io.ReadFull(c.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *conn) Respond(rec domain.Record) error {
	c.armWrite()
	switch rec.Outcome {
	case domain.OutcomeSuccess:
		return writeJSON(c.nc, http.StatusOK, newWorkResponse(rec), nil)
	case domain.OutcomeAdmissionTimeout:
		return writeJSON(c.nc, http.StatusServiceUnavailable, rejectResponse{
			Status:         "rejected",
			Reason:         string(rec.Outcome),
			RequestID:      rec.RequestID,
			QueueWaitTime:  roundSeconds(rec.QueueWait),
			SchedulingMode: rec.Mode.String(),
		}, nil)
	default:
		return errors.New("no response for outcome " + string(rec.Outcome))
	}
}

func (c *conn) writeControl(mode domain.Mode) error {
	c.armWrite()
	return writeJSON(c.nc, http.StatusOK, controlResponse{
		Status:         "mode_changed",
		SchedulingMode: mode.String(),
	}, nil)
}

func (c *conn) writeRateLimited(retryAfter time.Duration, mode domain.Mode) error {
	c.armWrite()
	h := http.Header{}
	h.Set("Retry-After", retryAfterSeconds(retryAfter))
	return writeJSON(c.nc, http.StatusTooManyRequests, rejectResponse{
		Status:         "rejected",
		Reason:         "rate_limited",
		RequestID:      c.id,
		SchedulingMode: mode.String(),
	}, h)
}
