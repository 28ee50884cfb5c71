package directpay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/directpay/directpay-go/paymsg"
)

// AcceptorConfig configures an Acceptor
type AcceptorConfig struct {
	// Receiver takes the delivered transactions. Required.
	Receiver TxReceiver

	// Memo is placed on accepting replies (optional, defaults to "ack").
	// Refusals always carry "nack".
	Memo string

	// Logger for accepted and refused payments (optional)
	Logger *zap.Logger
}

// Acceptor is the payee side of payment delivery, independent of transport
// framing: it consumes encoded Payment messages and produces the PaymentACK
// replies that payers authenticate. HTTP handlers and radio servers wrap it
// with their own framing.
type Acceptor struct {
	receiver TxReceiver
	memo     string
	logger   *zap.Logger
}

// NewAcceptor creates a new acceptor. A missing receiver is a caller bug and
// panics.
func NewAcceptor(config *AcceptorConfig) *Acceptor {
	if config == nil || config.Receiver == nil {
		panic("directpay: AcceptorConfig.Receiver is required")
	}

	memo := config.Memo
	if memo == "" {
		memo = paymsg.MemoAck
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Acceptor{
		receiver: config.Receiver,
		memo:     memo,
		logger:   logger,
	}
}

// Accept consumes one payment in its wire form and returns the encoded
// acknowledgment to reply with. The acknowledgment echoes rawPayment exactly;
// its memo is the acceptor's memo, or "nack" when the receiver refuses a
// transaction. An error means the payment was malformed and nothing should be
// replied.
func (a *Acceptor) Accept(ctx context.Context, rawPayment []byte) ([]byte, error) {
	if len(rawPayment) > paymsg.MaxMessageSize {
		return nil, fmt.Errorf("payment of %d bytes exceeds the %d byte limit", len(rawPayment), paymsg.MaxMessageSize)
	}

	var p paymsg.Payment
	if err := p.Unmarshal(rawPayment); err != nil {
		return nil, fmt.Errorf("failed to decode payment: %w", err)
	}
	if len(p.Transactions) == 0 {
		return nil, fmt.Errorf("payment carries no transactions")
	}

	memo := a.memo
	for _, raw := range p.Transactions {
		tx := Transaction(raw)
		if err := a.receiver.ReceiveTx(ctx, tx); err != nil {
			a.logger.Warn("transaction refused",
				zap.String("tx", tx.TxID()),
				zap.Error(err),
			)
			memo = paymsg.MemoNack
			break
		}
	}
	if memo != paymsg.MemoNack {
		a.logger.Debug("payment accepted",
			zap.Int("transactions", len(p.Transactions)),
			zap.String("memo", p.Memo),
		)
	}
	return paymsg.EncodePaymentACK(rawPayment, memo), nil
}
