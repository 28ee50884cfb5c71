package radio

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	directpay "github.com/directpay/directpay-go"
	"github.com/directpay/directpay-go/paymsg"
)

// ServerConfig configures a Server
type ServerConfig struct {
	// Receiver takes the delivered transactions. Required.
	Receiver directpay.TxReceiver

	// Memo is placed on accepting payment protocol replies (optional,
	// defaults to "ack", which is also what payers require).
	Memo string

	// Logger for accepted and refused sessions (optional)
	Logger *zap.Logger
}

// Server is the peer side of radio payment delivery. It accepts channels
// from one or more listeners and answers each one according to the service
// the remote payer negotiated: a verdict byte for raw transaction frames, a
// delimited PaymentACK for payment protocol messages.
type Server struct {
	acceptor *directpay.Acceptor
	receiver directpay.TxReceiver
	logger   *zap.Logger

	mu        sync.Mutex
	listeners []Listener
	closed    bool
	sessions  sync.WaitGroup
}

// NewServer creates a new server. A missing receiver is a caller bug and
// panics.
func NewServer(config *ServerConfig) *Server {
	if config == nil || config.Receiver == nil {
		panic("radio: ServerConfig.Receiver is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		acceptor: directpay.NewAcceptor(&directpay.AcceptorConfig{
			Receiver: config.Receiver,
			Memo:     config.Memo,
			Logger:   logger,
		}),
		receiver: config.Receiver,
		logger:   logger,
	}
}

// Serve accepts channels from l and answers each on its own goroutine. It
// blocks until l fails or the server closes; a close initiated by Close
// returns nil rather than the listener's error.
func (s *Server) Serve(ctx context.Context, l Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return nil
	}
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	for {
		ch, service, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			defer release(s.logger, ch)
			s.handle(ctx, ch, service)
		}()
	}
}

// Close stops all listeners and waits for in flight sessions to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, l := range listeners {
		if err := l.Close(); err != nil {
			s.logger.Debug("closing listener", zap.Error(err))
		}
	}
	s.sessions.Wait()
	return nil
}

func (s *Server) handle(ctx context.Context, ch Channel, service uuid.UUID) {
	switch service {
	case ServiceClassic:
		s.handleRaw(ctx, ch)
	case ServicePaymentProtocol:
		s.handlePayment(ctx, ch)
	default:
		s.logger.Warn("channel for unknown service", zap.Stringer("service", service))
	}
}

// handleRaw reads one version marked transaction frame and replies with a
// verdict byte. Nothing is replied to malformed frames; the payer sees the
// closed channel as a failure, not a rejection.
func (s *Server) handleRaw(ctx context.Context, ch Channel) {
	var header [8]byte
	if _, err := io.ReadFull(ch, header[:]); err != nil {
		s.logger.Warn("reading transaction frame", zap.Error(err))
		return
	}
	if v := binary.BigEndian.Uint32(header[:4]); v != rawFrameVersion {
		s.logger.Warn("unsupported transaction frame version", zap.Uint32("version", v))
		return
	}
	length := binary.BigEndian.Uint32(header[4:])
	if length == 0 || length > paymsg.MaxMessageSize {
		s.logger.Warn("implausible transaction length", zap.Uint32("length", length))
		return
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(ch, raw); err != nil {
		s.logger.Warn("reading transaction frame", zap.Error(err))
		return
	}

	verdict := byte(1)
	tx := directpay.Transaction(raw)
	if err := s.receiver.ReceiveTx(ctx, tx); err != nil {
		s.logger.Warn("transaction refused",
			zap.String("tx", tx.TxID()),
			zap.Error(err),
		)
		verdict = 0
	}
	if _, err := ch.Write([]byte{verdict}); err != nil {
		s.logger.Debug("writing verdict", zap.Error(err))
	}
}

// handlePayment reads one delimited payment message and replies with the
// acceptor's delimited acknowledgment.
func (s *Server) handlePayment(ctx context.Context, ch Channel) {
	raw, err := paymsg.ReadDelimitedRaw(ch)
	if err != nil {
		s.logger.Warn("reading payment message", zap.Error(err))
		return
	}

	reply, err := s.acceptor.Accept(ctx, raw)
	if err != nil {
		s.logger.Warn("discarding malformed payment", zap.Error(err))
		return
	}

	w := bufio.NewWriter(ch)
	if err := paymsg.WriteDelimitedRaw(w, reply); err != nil {
		s.logger.Debug("writing acknowledgment", zap.Error(err))
		return
	}
	if err := w.Flush(); err != nil {
		s.logger.Debug("writing acknowledgment", zap.Error(err))
	}
}
