// Package radio delivers payments over connection oriented short range
// links. A payer opens a channel to the peer through an Adapter, speaks one
// of two sub-protocols selected by the delivery standard, and reads the
// peer's verdict off the same channel. Server is the peer side of both
// sub-protocols, and TCPAdapter/TCPListener bridge the framing onto plain
// sockets so everything runs without radio hardware.
package radio

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service UUIDs naming the two sub-protocols a peer can speak. Opening a
// channel with one of these is the capability negotiation: a peer that
// accepts the connection has agreed to that framing.
var (
	// ServiceClassic carries a raw transaction frame and a one byte verdict.
	ServiceClassic = uuid.MustParse("3357a7bb-762d-464a-8d9a-dca592d57d5b")

	// ServicePaymentProtocol carries delimited Payment and PaymentACK
	// messages.
	ServicePaymentProtocol = uuid.MustParse("3357a7bb-762d-464a-8d9a-dca592d57d5a")
)

// Adapter opens logical channels to radio peers. Implementations wrap a
// physical radio stack; TCPAdapter substitutes sockets for development.
type Adapter interface {
	// Connect opens a channel to the peer at addr speaking the sub-protocol
	// identified by service. addr is the canonical colon separated hardware
	// address.
	Connect(ctx context.Context, addr string, service uuid.UUID) (Channel, error)
}

// Channel is one open session with a peer. The two directions and the
// session itself are released separately, mirroring the stream pairs radio
// sockets expose.
type Channel interface {
	io.ReadWriteCloser

	// CloseRead releases the inbound direction.
	CloseRead() error

	// CloseWrite releases the outbound direction.
	CloseWrite() error
}

// Listener accepts incoming channels together with the service the remote
// peer negotiated.
type Listener interface {
	Accept() (Channel, uuid.UUID, error)
	Close() error
}

// release closes both directions and then the channel. It runs after the
// outcome of a session is already determined, so failures are only logged.
func release(logger *zap.Logger, ch Channel) {
	if err := ch.CloseRead(); err != nil {
		logger.Debug("closing channel read side", zap.Error(err))
	}
	if err := ch.CloseWrite(); err != nil {
		logger.Debug("closing channel write side", zap.Error(err))
	}
	if err := ch.Close(); err != nil {
		logger.Debug("closing channel", zap.Error(err))
	}
}
