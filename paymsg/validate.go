package paymsg

// ValidateAck authenticates an acknowledgment against the payment that was
// sent. A peer proves it received the payment by echoing a structurally equal
// copy; any divergence means the acknowledgment refers to something else, or
// to nothing at all, and its memo carries no meaning.
//
// On success the memo and true are returned. Interpretation of the memo is
// the transport's concern: not every channel encodes its verdict there.
func ValidateAck(ack *PaymentACK, sent *Payment) (memo string, ok bool) {
	if ack == nil || sent == nil {
		return "", false
	}
	if !ack.Payment.Equal(sent) {
		return "", false
	}
	return ack.Memo, true
}
