// Package http provides HTTP delivery of payments: a payer-side Transport
// that posts payment messages to a payee's endpoint, and a payee-side
// handler that accepts them and answers with acknowledgments.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	directpay "github.com/directpay/directpay-go"
	"github.com/directpay/directpay-go/paymsg"
)

// ============================================================================
// HTTP Payment Transport
// ============================================================================

// Transport delivers StandardBIP70 payments to an HTTP payment endpoint.
// Implements directpay.Transport.
type Transport struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config configures the HTTP payment transport
type Config struct {
	// URL is the payment endpoint, taken from the payee's payment request
	URL string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Timeout bounds the whole exchange, from connecting to reading the
	// acknowledgment (optional, defaults to 15s). Ignored when HTTPClient
	// is set.
	Timeout time.Duration

	// Logger for delivery attempts (optional)
	Logger *zap.Logger
}

const defaultTimeout = 15 * time.Second

// NewTransport creates a new HTTP payment transport
func NewTransport(config *Config) *Transport {
	if config == nil {
		config = &Config{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{
		url:        config.URL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Supports reports that only StandardBIP70 travels over HTTP: the endpoint
// consumes payment messages, not bare transactions.
func (t *Transport) Supports(std directpay.Standard) bool {
	return std == directpay.StandardBIP70
}

// Deliver posts the payment message and interprets the acknowledgment. The
// payee's verdict rides in the memo: any authentic acknowledgment whose memo
// is not "nack" counts as accepted.
func (t *Transport) Deliver(ctx context.Context, d directpay.Delivery) directpay.Outcome {
	if !t.Supports(d.Standard) {
		panic(fmt.Sprintf("http: transport cannot carry %s deliveries", d.Standard))
	}
	if d.Payment == nil {
		panic("http: BIP70 delivery without a payment message")
	}

	body, err := d.Payment.Marshal()
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeHTTPRequest, "failed to encode payment", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.url, bytes.NewReader(body))
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeHTTPRequest, "failed to create payment request", err))
	}
	req.Header.Set("Content-Type", paymsg.MimePayment)
	req.Header.Set("Accept", paymsg.MimePaymentACK)
	req.Header.Set("Cache-Control", "no-cache")

	t.logger.Debug("posting payment",
		zap.String("url", t.url),
		zap.String("tx", d.Tx.TxID()),
		zap.Int("bytes", len(body)),
	)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeHTTPRequest, "payment request failed", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// resp.Status carries the numeric code plus whatever status text the
		// server sent.
		return directpay.Failed(directpay.NewDeliveryError(
			directpay.ErrCodeHTTPStatus,
			fmt.Sprintf("payment endpoint returned %s", resp.Status),
			nil,
		))
	}

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, paymsg.MaxMessageSize+1))
	if err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeRead, "failed to read acknowledgment", err))
	}
	if len(responseBody) > paymsg.MaxMessageSize {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeBadAck, "acknowledgment exceeds the message size limit", nil))
	}

	var ack paymsg.PaymentACK
	if err := ack.Unmarshal(responseBody); err != nil {
		return directpay.Failed(directpay.NewDeliveryError(directpay.ErrCodeBadAck, "failed to decode acknowledgment", err))
	}

	memo, ok := paymsg.ValidateAck(&ack, d.Payment)
	if !ok {
		t.logger.Warn("acknowledgment does not echo the payment", zap.String("tx", d.Tx.TxID()))
		return directpay.Rejected("")
	}
	if memo == paymsg.MemoNack {
		return directpay.Rejected(memo)
	}
	return directpay.Acknowledged(memo)
}
