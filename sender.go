package directpay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender runs deliveries on a background executor and reports every outcome
// through a ResultCallback on the home executor. This is what keeps callers,
// typically a UI or request handler, off the network: Send returns at once
// and the callback later runs where the application expects it to.
type Sender struct {
	mu sync.RWMutex

	transport  Transport
	callback   ResultCallback
	background Executor
	home       Executor
	logger     *zap.Logger

	// ownedHome is set when the sender created its own home queue and is
	// therefore responsible for shutting it down.
	ownedHome *SerialQueue

	// Lifecycle hooks
	beforeSendHooks  []BeforeSendHook
	afterSendHooks   []AfterSendHook
	sendFailureHooks []SendFailureHook
}

// SenderOption configures the sender
type SenderOption func(*Sender)

// WithBackground sets the executor delivery attempts run on. The default
// runs each attempt on its own goroutine.
func WithBackground(e Executor) SenderOption {
	return func(s *Sender) {
		s.background = e
	}
}

// WithHome sets the executor callbacks are reported on. Pass the
// application's own executor to marshal callbacks onto its event loop; the
// default is a serial queue owned by the sender.
func WithHome(e Executor) SenderOption {
	return func(s *Sender) {
		s.home = e
	}
}

// WithLogger sets the sender's logger. The default discards everything.
func WithLogger(logger *zap.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logger
	}
}

// NewSender creates a sender bound to one transport and one result sink.
// Both are required; passing nil for either is a programming error.
func NewSender(transport Transport, cb ResultCallback, opts ...SenderOption) *Sender {
	if transport == nil {
		panic("directpay: NewSender with a nil transport")
	}
	if cb == nil {
		panic("directpay: NewSender with a nil callback")
	}

	s := &Sender{
		transport: transport,
		callback:  cb,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.background == nil {
		s.background = GoExecutor{}
	}
	if s.home == nil {
		q := NewSerialQueue()
		s.home = q
		s.ownedHome = q
	}

	return s
}

// ============================================================================
// Hook Registration Methods
// ============================================================================

// OnBeforeSend registers a hook to be called before each delivery attempt
func (s *Sender) OnBeforeSend(hook BeforeSendHook) *Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeSendHooks = append(s.beforeSendHooks, hook)
	return s
}

// OnAfterSend registers a hook to be called after each concluded attempt
func (s *Sender) OnAfterSend(hook AfterSendHook) *Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterSendHooks = append(s.afterSendHooks, hook)
	return s
}

// OnSendFailure registers a hook to be called when an attempt fails
func (s *Sender) OnSendFailure(hook SendFailureHook) *Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendFailureHooks = append(s.sendFailureHooks, hook)
	return s
}

// ============================================================================
// Delivery
// ============================================================================

// Send delivers d over the sender's transport and reports the outcome to its
// callback from the home executor. It returns without waiting for the
// network; exactly one of OnResult and OnFail runs per call, no matter how
// the attempt ends.
//
// Misuse panics before anything is scheduled: a delivery the transport does
// not support, or a StandardBIP70 delivery missing its payment message.
func (s *Sender) Send(ctx context.Context, d Delivery) {
	if !s.transport.Supports(d.Standard) {
		panic(fmt.Sprintf("directpay: %T does not carry %s deliveries", s.transport, d.Standard))
	}
	if d.Standard == StandardBIP70 && d.Payment == nil {
		panic("directpay: BIP70 delivery without a payment message")
	}

	s.background.Execute(func() {
		outcome := s.attempt(ctx, d)
		s.home.Execute(func() {
			s.report(outcome)
		})
	})
}

// Close shuts down the sender's owned home queue once the callbacks already
// scheduled on it have run. It does not wait for deliveries still in flight;
// their callbacks are discarded. Senders given a home executor through
// WithHome own nothing, so Close does nothing for them.
func (s *Sender) Close() {
	if s.ownedHome != nil {
		s.ownedHome.Close()
	}
}

func (s *Sender) report(o Outcome) {
	switch o.Status {
	case StatusAcknowledged:
		s.callback.OnResult(true)
	case StatusRejected:
		s.callback.OnResult(false)
	default:
		s.callback.OnFail(o.Err)
	}
}

// attempt runs one delivery with its hooks on the background executor.
func (s *Sender) attempt(ctx context.Context, d Delivery) Outcome {
	s.mu.RLock()
	before := s.beforeSendHooks
	after := s.afterSendHooks
	onFailure := s.sendFailureHooks
	s.mu.RUnlock()

	hookCtx := SendContext{
		Ctx:       ctx,
		Delivery:  d,
		Timestamp: time.Now(),
	}
	for _, hook := range before {
		result, err := hook(hookCtx)
		if err != nil {
			return Failed(NewDeliveryError(ErrCodeAborted, "before-send hook failed", err))
		}
		if result != nil && result.Abort {
			return Failed(NewDeliveryError(ErrCodeAborted, result.Reason, nil))
		}
	}

	start := time.Now()
	outcome := s.transport.Deliver(ctx, d)
	duration := time.Since(start)

	s.logger.Debug("delivery attempt concluded",
		zap.String("tx", d.Tx.TxID()),
		zap.Stringer("standard", d.Standard),
		zap.Stringer("status", outcome.Status),
		zap.Duration("duration", duration),
		zap.Error(outcome.Err),
	)

	if outcome.Status == StatusFailed {
		failureCtx := SendFailureContext{SendContext: hookCtx, Err: outcome.Err, Duration: duration}
		for _, hook := range onFailure {
			result, _ := hook(failureCtx)
			if result != nil && result.Recovered {
				return result.Outcome
			}
		}
		return outcome
	}

	resultCtx := SendResultContext{SendContext: hookCtx, Outcome: outcome, Duration: duration}
	for _, hook := range after {
		if err := hook(resultCtx); err != nil {
			s.logger.Warn("after-send hook failed", zap.Error(err))
		}
	}
	return outcome
}
