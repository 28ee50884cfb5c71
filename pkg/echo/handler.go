// Package echo adapts the payee side of payment delivery to the Echo
// framework.
package echo

import (
	"io"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
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

// PaymentHandler is the Echo handler for the payee side of payment delivery:
// it consumes a POSTed payment message, hands the transactions to receiver
// and replies with the acknowledgment payers authenticate. Register it for
// POST on the path payment URIs advertise.
func PaymentHandler(receiver directpay.TxReceiver, opts ...Options) echo.HandlerFunc {
	options := &HandlerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	acceptor := directpay.NewAcceptor(&directpay.AcceptorConfig{
		Receiver: receiver,
		Memo:     options.Memo,
		Logger:   options.Logger,
	})

	return func(c echo.Context) error {
		req := c.Request()
		if ct := req.Header.Get(echo.HeaderContentType); ct != "" {
			if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != paymsg.MimePayment {
				return echo.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported content type")
			}
		}

		body, err := io.ReadAll(io.LimitReader(req.Body, paymsg.MaxMessageSize+1))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read payment")
		}
		if len(body) > paymsg.MaxMessageSize {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payment too large")
		}

		reply, err := acceptor.Accept(req.Context(), body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed payment")
		}
		return c.Blob(http.StatusOK, paymsg.MimePaymentACK, reply)
	}
}
