package paymsg

// MIME types identifying payment protocol entities in transport metadata.
const (
	MimePaymentRequest = "application/bitcoin-paymentrequest"
	MimePayment        = "application/bitcoin-payment"
	MimePaymentACK     = "application/bitcoin-paymentack"
)

// Conventional memos on channels that carry the payee's verdict in the
// acknowledgment memo field.
const (
	MemoAck  = "ack"
	MemoNack = "nack"
)
