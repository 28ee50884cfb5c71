// Package gin adapts the payee side of payment delivery to the Gin
// framework.
package gin

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	directpay "github.com/directpay/directpay-go"
	"github.com/directpay/directpay-go/paymsg"
)

// HandlerOptions is the options for the PaymentHandler.
type HandlerOptions struct {
	Memo   string
	Logger *zap.Logger
}

// Options is the type for the options for the PaymentHandler.
type Options func(*HandlerOptions)

// WithMemo is an option for the PaymentHandler to set the memo placed on
// accepting replies.
func WithMemo(memo string) Options {
	return func(options *HandlerOptions) {
		options.Memo = memo
	}
}

// WithLogger is an option for the PaymentHandler to set the logger.
func WithLogger(logger *zap.Logger) Options {
	return func(options *HandlerOptions) {
		options.Logger = logger
	}
}

// PaymentHandler is the Gin handler for the payee side of payment delivery:
// it consumes a POSTed payment message, hands the transactions to receiver
// and replies with the acknowledgment payers authenticate. Register it for
// POST on the path payment URIs advertise.
func PaymentHandler(receiver directpay.TxReceiver, opts ...Options) gin.HandlerFunc {
	options := &HandlerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	acceptor := directpay.NewAcceptor(&directpay.AcceptorConfig{
		Receiver: receiver,
		Memo:     options.Memo,
		Logger:   options.Logger,
	})

	return func(c *gin.Context) {
		if ct := c.ContentType(); ct != "" && ct != paymsg.MimePayment {
			c.String(http.StatusUnsupportedMediaType, "unsupported content type %q", ct)
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, paymsg.MaxMessageSize+1))
		if err != nil {
			c.String(http.StatusBadRequest, "failed to read payment")
			return
		}
		if len(body) > paymsg.MaxMessageSize {
			c.String(http.StatusRequestEntityTooLarge, "payment exceeds the %d byte limit", paymsg.MaxMessageSize)
			return
		}

		reply, err := acceptor.Accept(c.Request.Context(), body)
		if err != nil {
			c.String(http.StatusBadRequest, "malformed payment")
			return
		}
		c.Data(http.StatusOK, paymsg.MimePaymentACK, reply)
	}
}
