package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "scheduler-sim/dispatch"

// Exchange é o que o despachante precisa de uma conexão aceita.
//
// ReadPayload devolve (nil, nil) ou (nil, io.EOF) quando o cliente não enviou
// nada. Respond serializa o Record; é chamado para sucesso e para
// OutcomeAdmissionTimeout. Fechar a conexão é responsabilidade de quem chamou Handle.
type Exchange interface {
	ID() string
	RemoteAddr() string
	ReadPayload() ([]byte, error)
	Respond(rec domain.Record) error
}

type DispatcherOptions struct {
	Admission ConcurrencyService
	Sequencer domain.Sequencer
	Policy    *Policy
	// Sink é opcional.
	Sink   domain.RecordSink
	Log    logr.Logger
	Tracer trace.Tracer
}

// Dispatcher conduz o ciclo de vida de uma requisição:
//
//	ADMITTING -> SEQUENCED -> WORKING -> COMPLETE
//	ADMITTING | SEQUENCED | WORKING -> FAILED
//
// Em qualquer caminho a vaga adquirida é devolvida exatamente uma vez.
type Dispatcher struct {
	admission ConcurrencyService
	seq       domain.Sequencer
	policy    *Policy
	sink      domain.RecordSink
	log       logr.Logger
	tracer    trace.Tracer
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Policy == nil {
		opts.Policy = NewPolicy(domain.ModeFIFO, DefaultPolicyConfig())
	}
	if opts.Sequencer == nil {
		opts.Sequencer = &counter{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Log.GetSink() == nil {
		opts.Log = logr.Discard()
	}
	return &Dispatcher{
		admission: opts.Admission,
		seq:       opts.Sequencer,
		policy:    opts.Policy,
		sink:      opts.Sink,
		log:       opts.Log,
		tracer:    opts.Tracer,
	}
}

func (d *Dispatcher) Policy() *Policy { return d.policy }

// counter é o Sequencer usado quando nenhum é injetado.
type counter struct{ n atomic.Uint64 }

func (c *counter) Next() uint64 { return c.n.Add(1) }

// WorkerName é o rótulo reportado como thread_name.
func WorkerName(seq uint64) string { return "Worker-" + strconv.FormatUint(seq, 10) }

// Handle atende uma conexão até o estado terminal. Nunca propaga erro nem
// pânico: falhas são classificadas, registradas e entregues ao Sink.
func (d *Dispatcher) Handle(ctx context.Context, ex Exchange) {
	ctx, span := d.tracer.Start(ctx, "dispatch.handle",
		trace.WithAttributes(attribute.String("request.id", ex.ID())))
	defer span.End()

	log := d.log.WithValues("requestID", ex.ID(), "remote", ex.RemoteAddr())
	rec := domain.Record{
		RequestID:  ex.ID(),
		RemoteAddr: ex.RemoteAddr(),
		Mode:       d.policy.Get(),
	}

	log.V(1).Info("waiting for worker slot")
	admitStart := time.Now()
	permit, err := d.admission.Acquire(ctx)
	if err != nil {
		rec.QueueWait = time.Since(admitStart)
		rec.Total = rec.QueueWait
		if errors.Is(err, domain.ErrAdmissionTimeout) {
			rec.Outcome = domain.OutcomeAdmissionTimeout
			rec.At = time.Now()
			if werr := ex.Respond(rec); werr != nil {
				err = errors.Join(err, fmt.Errorf("%w: write rejection: %w", domain.ErrTransport, werr))
			}
		}
		d.finish(ctx, log, span, &rec, err)
		return
	}
	rec.QueueWait = permit.Waited()
	log.V(1).Info("acquired worker slot", "queueWait", rec.QueueWait)

	err = d.process(ctx, log, ex, permit, &rec)
	d.finish(ctx, log, span, &rec, err)
}

// process roda com a vaga adquirida. O defer libera a vaga mesmo em pânico.
func (d *Dispatcher) process(ctx context.Context, log logr.Logger, ex Exchange, permit *domain.Permit, rec *domain.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrTransport, r)
		}
		permit.Release()
		log.V(1).Info("released worker slot", "request", rec.Sequence)
	}()

	rec.Sequence = d.seq.Next()
	rec.Worker = WorkerName(rec.Sequence)

	payload, err := ex.ReadPayload()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read payload: %w", domain.ErrTransport, err)
	}
	if len(payload) == 0 {
		return domain.ErrEmptyPayload
	}
	rec.FirstLine = firstLine(payload)
	log.Info("request received", "request", rec.Sequence, "worker", rec.Worker, "line", rec.FirstLine)

	start := time.Now()
	rec.Mode = d.policy.Get()
	if _, err := d.policy.Simulate(ctx, rec.Mode); err != nil {
		rec.Processing = time.Since(start)
		rec.Total = rec.QueueWait + rec.Processing
		return fmt.Errorf("simulate %s: %w", rec.Mode, err)
	}
	rec.Processing = time.Since(start)
	rec.Total = rec.QueueWait + rec.Processing
	rec.Outcome = domain.OutcomeSuccess
	rec.At = time.Now()

	if err := ex.Respond(*rec); err != nil {
		return fmt.Errorf("%w: write response: %w", domain.ErrTransport, err)
	}
	return nil
}

func (d *Dispatcher) finish(ctx context.Context, log logr.Logger, span trace.Span, rec *domain.Record, err error) {
	rec.Outcome = domain.Classify(err)
	rec.Err = err
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	span.SetAttributes(
		attribute.Int64("request.number", int64(rec.Sequence)),
		attribute.String("scheduling.mode", rec.Mode.String()),
		attribute.String("request.outcome", string(rec.Outcome)),
		attribute.Float64("queue.wait_seconds", rec.QueueWait.Seconds()),
		attribute.Float64("processing.seconds", rec.Processing.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(rec.Outcome))
		log.Error(err, "request failed", "request", rec.Sequence, "outcome", rec.Outcome)
	} else {
		span.SetStatus(codes.Ok, "")
		log.Info("request completed", "request", rec.Sequence, "worker", rec.Worker,
			"mode", rec.Mode.String(), "queueWait", rec.QueueWait, "processing", rec.Processing)
	}

	if d.sink == nil {
		return
	}
	if serr := d.sink.Record(context.WithoutCancel(ctx), *rec); serr != nil {
		log.Error(serr, "record sink failed", "request", rec.Sequence)
	}
}

func firstLine(payload []byte) string {
	if i := bytes.IndexByte(payload, '\n'); i >= 0 {
		payload = payload[:i]
	}
	return string(bytes.TrimSpace(payload))
}
