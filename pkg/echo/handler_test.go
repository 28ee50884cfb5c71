package echo

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directpay "github.com/directpay/directpay-go"
	dphttp "github.com/directpay/directpay-go/http"
	"github.com/directpay/directpay-go/paymsg"
)

func newServer(receiver directpay.TxReceiver, opts ...Options) *echo.Echo {
	e := echo.New()
	e.POST("/pay", PaymentHandler(receiver, opts...))
	return e
}

func postPayment(e *echo.Echo, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pay", bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPaymentHandlerAcknowledges(t *testing.T) {
	var received []directpay.Transaction
	e := newServer(directpay.TxReceiverFunc(func(ctx context.Context, tx directpay.Transaction) error {
		received = append(received, tx)
		return nil
	}), WithMemo("thanks"))

	payment := &paymsg.Payment{Transactions: [][]byte{{0x01, 0x02}}}
	enc, err := payment.Marshal()
	require.NoError(t, err)

	rec := postPayment(e, paymsg.MimePayment, enc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, paymsg.MimePaymentACK, rec.Header().Get(echo.HeaderContentType))

	var ack paymsg.PaymentACK
	require.NoError(t, ack.Unmarshal(rec.Body.Bytes()))
	memo, ok := paymsg.ValidateAck(&ack, payment)
	require.True(t, ok, "acknowledgment does not echo the payment")
	assert.Equal(t, "thanks", memo)
	assert.Len(t, received, 1)
}

func TestPaymentHandlerNacksRefusedTransactions(t *testing.T) {
	e := newServer(directpay.TxReceiverFunc(func(context.Context, directpay.Transaction) error {
		return errors.New("unknown outputs")
	}))

	payment := &paymsg.Payment{Transactions: [][]byte{{0x01}}}
	enc, err := payment.Marshal()
	require.NoError(t, err)

	rec := postPayment(e, paymsg.MimePayment, enc)
	require.Equal(t, http.StatusOK, rec.Code)

	var ack paymsg.PaymentACK
	require.NoError(t, ack.Unmarshal(rec.Body.Bytes()))
	memo, ok := paymsg.ValidateAck(&ack, payment)
	require.True(t, ok)
	assert.Equal(t, paymsg.MemoNack, memo)
}

func TestPaymentHandlerErrorStatuses(t *testing.T) {
	acceptAll := directpay.TxReceiverFunc(func(context.Context, directpay.Transaction) error {
		return nil
	})

	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        int
	}{
		{"wrong content type", "application/json", []byte("{}"), http.StatusUnsupportedMediaType},
		{"ack content type", paymsg.MimePaymentACK, []byte("{}"), http.StatusUnsupportedMediaType},
		{"malformed payment", paymsg.MimePayment, []byte{0x0a, 0xff, 0xff}, http.StatusBadRequest},
		{"oversized payment", paymsg.MimePayment, make([]byte, paymsg.MaxMessageSize+1), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postPayment(newServer(acceptAll), tt.contentType, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPaymentHandlerEndToEnd(t *testing.T) {
	e := newServer(directpay.TxReceiverFunc(func(context.Context, directpay.Transaction) error {
		return nil
	}))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	d, err := directpay.PaymentDelivery(directpay.Transaction{0xaa, 0xbb}, nil, "lunch", nil)
	require.NoError(t, err)

	transport := dphttp.NewTransport(&dphttp.Config{URL: srv.URL + "/pay"})
	outcome := transport.Deliver(context.Background(), d)
	require.Equalf(t, directpay.StatusAcknowledged, outcome.Status, "outcome: %+v", outcome)
}
