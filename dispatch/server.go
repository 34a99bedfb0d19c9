package dispatch

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"scheduler-sim/dispatch/application"
	"scheduler-sim/dispatch/domain"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ErrServerClosed é devolvido por Serve/ListenAndServe depois de Shutdown.
var ErrServerClosed = errors.New("dispatch: server closed")

type Options struct {
	Addr string
	// Backlog é o backlog de listen(2). 0 usa o padrão do runtime.
	Backlog int
	// PeekSize limita os bytes espiados na primeira linha e lidos como payload.
	PeekSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Dispatcher *application.Dispatcher
	// Rate é opcional; quando presente limita requisições de trabalho por cliente.
	// Diretivas de controle nunca passam pelo rate limit.
	Rate *application.RateService
	// ModeObserver é opcional.
	ModeObserver domain.ModeObserver
	Log          logr.Logger
}

// Server é o loop de aceitação. Cada conexão roda na sua própria goroutine;
// o loop nunca espera o ciclo de vida de uma requisição.
type Server struct {
	opts Options
	log  logr.Logger

	// work é o contexto das requisições em andamento. Só é cancelado quando
	// Shutdown desiste de esperar.
	work       context.Context
	cancelWork context.CancelFunc

	mu       sync.Mutex
	ln       net.Listener
	conns    map[*conn]struct{}
	shutdown bool
	wg       sync.WaitGroup
}

func NewServer(opts Options) *Server {
	if opts.PeekSize <= 0 {
		opts.PeekSize = 1024
	}
	if opts.Log.GetSink() == nil {
		opts.Log = logr.Discard()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = application.NewDispatcher(application.DispatcherOptions{Log: opts.Log})
	}
	work, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:       opts,
		log:        opts.Log.WithName("listener"),
		work:       work,
		cancelWork: cancel,
		conns:      make(map[*conn]struct{}),
	}
}

// ListenAndServe abre o socket em opts.Addr respeitando o backlog e chama Serve.
func (s *Server) ListenAndServe() error {
	ln, err := listen(s.opts.Addr, s.opts.Backlog)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr devolve o endereço do listener ativo (nil antes de Serve).
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.log.Info("accepting connections", "addr", ln.Addr().String(), "backlog", s.opts.Backlog)

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.log.Error(err, "accept failed, retrying", "backoff", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		s.mu.Lock()
		if s.shutdown {
			s.mu.Unlock()
			_ = nc.Close()
			return ErrServerClosed
		}
		c := newConn(nc, uuid.NewString(), s.opts.PeekSize, s.opts.ReadTimeout, s.opts.WriteTimeout)
		s.wg.Add(1)
		s.conns[c] = struct{}{}
		s.mu.Unlock()
		go s.serveConn(c)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

func (s *Server) closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Server) serveConn(c *conn) {
	defer s.wg.Done()
	defer func() {
		_ = c.nc.Close()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()

	log := s.log.WithValues("requestID", c.id, "remote", c.RemoteAddr())

	// Erro aqui não é tratado: o despachante lê de novo e classifica
	// (EOF vira payload vazio, o resto vira erro de transporte).
	line, _ := c.peekFirstLine()

	policy := s.opts.Dispatcher.Policy()
	if token, ok := parseDirective(line); ok {
		s.handleControl(log, c, policy, token)
		return
	}

	if s.opts.Rate != nil {
		dec := s.opts.Rate.Decide(ClientKey(c.nc.RemoteAddr()))
		if !dec.Allowed {
			log.V(1).Info("rate limited", "retryAfter", dec.RetryAfter)
			if err := c.writeRateLimited(dec.RetryAfter, policy.Get()); err != nil {
				log.Error(err, "write rate limit response")
			}
			return
		}
	}

	s.opts.Dispatcher.Handle(s.work, c)
}

func (s *Server) handleControl(log logr.Logger, c *conn, policy *application.Policy, token string) {
	applied := policy.Set(token)
	mode := policy.Get()
	if applied {
		log.Info("scheduling mode updated", "mode", mode.String())
	} else {
		log.Info("ignored scheduling mode directive", "token", token, "mode", mode.String())
	}
	if s.opts.ModeObserver != nil {
		s.opts.ModeObserver.ModeDirective(mode, applied)
	}
	if err := c.writeControl(mode); err != nil {
		log.Error(err, "write control response")
	}
}

// Shutdown fecha o listener e espera as conexões em andamento. Se ctx
// encerrar antes, o trabalho simulado restante é cancelado (as vagas são
// devolvidas), as conexões ainda abertas têm leitura e escrita interrompidas
// e ctx.Err() é retornado.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancelWork()
		return err
	case <-ctx.Done():
		s.log.Info("shutdown timeout, canceling in-flight requests")
		s.cancelWork()
		s.interruptConns()
		<-done
		return ctx.Err()
	}
}

// interruptConns vence o deadline de todas as conexões vivas, destravando
// quem estiver bloqueado em leitura ou escrita.
func (s *Server) interruptConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.interrupt()
	}
}
