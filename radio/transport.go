package radio

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	directpay "github.com/directpay/directpay-go"
	"github.com/directpay/directpay-go/paymsg"
)

// rawFrameVersion is the marker written ahead of every raw transaction
// frame.
const rawFrameVersion = 1

// Transport delivers payments to one radio peer reached through an Adapter.
// It carries both standards; the standard selects the service UUID the
// channel is opened with.
type Transport struct {
	adapter Adapter
	addr    string
	logger  *zap.Logger
}

// Config carries the settings for a radio transport.
type Config struct {
	// Adapter opens channels to the peer. Required.
	Adapter Adapter

	// Addr is the compressed hardware address of the peer, exactly as it
	// appears in a payment URI.
	Addr string

	// Logger for delivery activity. Defaults to a no-op logger.
	Logger *zap.Logger
}

// NewTransport creates a radio transport for one peer.
func NewTransport(config *Config) *Transport {
	if config == nil || config.Adapter == nil {
		panic("radio: Config.Adapter is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{
		adapter: config.Adapter,
		addr:    config.Addr,
		logger:  logger,
	}
}

// Supports reports true for both standards.
func (t *Transport) Supports(std directpay.Standard) bool {
	return std == directpay.StandardBIP21 || std == directpay.StandardBIP70
}

// Deliver opens a channel for the delivery's standard, runs one session and
// classifies the peer's reply. The peer address travels compressed; a
// malformed one is merchant data gone wrong and fails the delivery rather
// than panicking.
func (t *Transport) Deliver(ctx context.Context, d directpay.Delivery) directpay.Outcome {
	var service uuid.UUID
	switch d.Standard {
	case directpay.StandardBIP21:
		service = ServiceClassic
	case directpay.StandardBIP70:
		if d.Payment == nil {
			panic("radio: BIP70 delivery without a payment message")
		}
		service = ServicePaymentProtocol
	default:
		panic(fmt.Sprintf("radio: transport cannot carry %s deliveries", d.Standard))
	}

	addr, err := DecompressAddr(t.addr)
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeBadAddress, "decompressing peer address", err))
	}

	ch, err := t.adapter.Connect(ctx, addr, service)
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeConnect, fmt.Sprintf("connecting to %s", addr), err))
	}
	defer release(t.logger, ch)

	t.logger.Info("delivering payment over radio",
		zap.String("peer", addr),
		zap.Stringer("standard", d.Standard),
		zap.String("tx", d.Tx.TxID()),
	)

	if d.Standard == directpay.StandardBIP21 {
		return t.deliverRaw(ch, d.Tx)
	}
	return t.deliverPayment(ch, d.Payment)
}

// deliverRaw writes a version marked frame carrying the raw transaction and
// reads the peer's one byte verdict.
func (t *Transport) deliverRaw(ch Channel, tx directpay.Transaction) directpay.Outcome {
	w := bufio.NewWriter(ch)
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], rawFrameVersion)
	binary.BigEndian.PutUint32(header[4:], uint32(len(tx)))
	if _, err := w.Write(header[:]); err != nil {
		return writeFailed(err)
	}
	if _, err := w.Write(tx); err != nil {
		return writeFailed(err)
	}
	if err := w.Flush(); err != nil {
		return writeFailed(err)
	}

	var verdict [1]byte
	if _, err := io.ReadFull(ch, verdict[:]); err != nil {
		return readFailed(err)
	}
	if verdict[0] == 0 {
		return directpay.Rejected("")
	}
	return directpay.Acknowledged("")
}

// deliverPayment writes the delimited payment message and validates the
// peer's delimited acknowledgment. The peer signals acceptance with the
// literal memo "ack"; any other memo, or an acknowledgment that does not
// echo the payment, is a rejection.
func (t *Transport) deliverPayment(ch Channel, payment *paymsg.Payment) directpay.Outcome {
	w := bufio.NewWriter(ch)
	if err := paymsg.WriteDelimited(w, payment); err != nil {
		return writeFailed(err)
	}
	if err := w.Flush(); err != nil {
		return writeFailed(err)
	}

	raw, err := paymsg.ReadDelimitedRaw(ch)
	if err != nil {
		return readFailed(err)
	}
	var ack paymsg.PaymentACK
	if err := ack.Unmarshal(raw); err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeBadAck, "parsing acknowledgment", err))
	}

	memo, ok := paymsg.ValidateAck(&ack, payment)
	if !ok {
		t.logger.Warn("acknowledgment does not echo the payment", zap.String("peer", t.addr))
		return directpay.Rejected("")
	}
	if memo != paymsg.MemoAck {
		return directpay.Rejected(memo)
	}
	return directpay.Acknowledged(memo)
}

func writeFailed(err error) directpay.Outcome {
	return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeWrite, "writing to channel", err))
}

func readFailed(err error) directpay.Outcome {
	return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeRead, "reading acknowledgment", err))
}
