package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	directpay "github.com/directpay/directpay-go"
	"github.com/directpay/directpay-go/paymsg"
)

// ============================================================================
// HTTP Acknowledgment Handler
// ============================================================================

// AckHandler is an http.Handler for the payee side of HTTP delivery: it
// receives posted payment messages, hands their transactions to a receiver
// and answers with the acknowledgment. Mount it on the path advertised as
// the payment URL.
type AckHandler struct {
	acceptor *directpay.Acceptor
	logger   *zap.Logger
}

// HandlerConfig configures the acknowledgment handler
type HandlerConfig struct {
	// Receiver takes the delivered transactions. Required.
	Receiver directpay.TxReceiver

	// Memo is placed on accepting replies (optional, defaults to "ack")
	Memo string

	// Logger for received payments (optional)
	Logger *zap.Logger
}

// NewAckHandler creates a new acknowledgment handler. A missing receiver is
// a caller bug and panics.
func NewAckHandler(config *HandlerConfig) *AckHandler {
	if config == nil {
		config = &HandlerConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AckHandler{
		acceptor: directpay.NewAcceptor(&directpay.AcceptorConfig{
			Receiver: config.Receiver,
			Memo:     config.Memo,
			Logger:   config.Logger,
		}),
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *AckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "payments are POSTed", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != paymsg.MimePayment {
			http.Error(w, fmt.Sprintf("unsupported content type %q", ct), http.StatusUnsupportedMediaType)
			return
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, paymsg.MaxMessageSize+1))
	if err != nil {
		http.Error(w, "failed to read payment", http.StatusBadRequest)
		return
	}
	if len(raw) > paymsg.MaxMessageSize {
		http.Error(w, "payment exceeds the message size limit", http.StatusRequestEntityTooLarge)
		return
	}

	reply, err := h.acceptor.Accept(r.Context(), raw)
	if err != nil {
		h.logger.Warn("rejecting malformed payment", zap.Error(err))
		http.Error(w, "malformed payment", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", paymsg.MimePaymentACK)
	w.Header().Set("Content-Length", strconv.Itoa(len(reply)))
	if _, err := w.Write(reply); err != nil {
		h.logger.Debug("failed to write acknowledgment", zap.Error(err))
	}
}
