package gin

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directpay "github.com/directpay/directpay-go"
	dphttp "github.com/directpay/directpay-go/http"
	"github.com/directpay/directpay-go/paymsg"
)

func newRouter(receiver directpay.TxReceiver, opts ...Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pay", PaymentHandler(receiver, opts...))
	return r
}

func postPayment(router *gin.Engine, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pay", bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPaymentHandlerAcknowledges(t *testing.T) {
	var received []directpay.Transaction
	router := newRouter(directpay.TxReceiverFunc(func(ctx context.Context, tx directpay.Transaction) error {
		received = append(received, tx)
		return nil
	}), WithMemo("thanks"))

	payment := &paymsg.Payment{Transactions: [][]byte{{0x01, 0x02}}}
	enc, err := payment.Marshal()
	require.NoError(t, err)

	rec := postPayment(router, paymsg.MimePayment, enc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, paymsg.MimePaymentACK, rec.Header().Get("Content-Type"))

	var ack paymsg.PaymentACK
	require.NoError(t, ack.Unmarshal(rec.Body.Bytes()))
	memo, ok := paymsg.ValidateAck(&ack, payment)
	require.True(t, ok, "acknowledgment does not echo the payment")
	assert.Equal(t, "thanks", memo)
	assert.Len(t, received, 1)
}

func TestPaymentHandlerNacksRefusedTransactions(t *testing.T) {
	router := newRouter(directpay.TxReceiverFunc(func(context.Context, directpay.Transaction) error {
		return errors.New("unknown outputs")
	}))

	payment := &paymsg.Payment{Transactions: [][]byte{{0x01}}}
	enc, err := payment.Marshal()
	require.NoError(t, err)

	rec := postPayment(router, paymsg.MimePayment, enc)
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
			rec := postPayment(newRouter(acceptAll), tt.contentType, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPaymentHandlerEndToEnd(t *testing.T) {
	router := newRouter(directpay.TxReceiverFunc(func(context.Context, directpay.Transaction) error {
		return nil
	}))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	d, err := directpay.PaymentDelivery(directpay.Transaction{0xaa, 0xbb}, nil, "lunch", nil)
	require.NoError(t, err)

	transport := dphttp.NewTransport(&dphttp.Config{URL: srv.URL + "/pay"})
	outcome := transport.Deliver(context.Background(), d)
	require.Equalf(t, directpay.StatusAcknowledged, outcome.Status, "outcome: %+v", outcome)
}
