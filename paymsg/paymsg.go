// Package paymsg implements the BIP70 payment protocol messages exchanged
// during direct payment delivery: Payment, carrying one or more signed
// transactions plus optional refund outputs, memo and merchant data, and
// PaymentACK, the peer's reply echoing the Payment it received.
//
// The message set is tiny and frozen, so the protobuf wire encoding is
// implemented directly (see wire.go) rather than generated. Encoded bytes are
// identical to what the reference protobuf definitions produce, which is what
// makes acknowledgment authentication (ValidateAck) possible: a peer proves it
// received the payment by echoing a structurally equal copy.
package paymsg

import "bytes"

// Output is a refund destination inside a Payment: an amount in satoshis and
// the locking script that must be satisfied to spend it.
type Output struct {
	// Amount in satoshis. Never exceeds the maximum signed 64-bit value;
	// BuildPayment enforces this at construction time.
	Amount uint64

	// Script is the serialized locking script of the refund destination.
	Script []byte
}

// Payment is the wire entity a payer submits to a payee. It carries the fully
// signed transactions, zero or more refund outputs the payee should use if the
// payment has to be returned, an optional human-readable memo, and the opaque
// merchant data from the payment request, echoed back so the payee can
// correlate the payment with its own state.
type Payment struct {
	// MerchantData is passed through unmodified; the payer never inspects it.
	MerchantData []byte

	// Transactions holds the serialized signed transactions. Direct payment
	// delivery always sends exactly one.
	Transactions [][]byte

	// RefundTo lists outputs the payee may use to return funds.
	RefundTo []*Output

	// Memo is an optional note from the payer to the payee.
	Memo string
}

// PaymentACK is the payee's reply to a Payment. The echoed Payment
// authenticates the acknowledgment; the memo carries the payee's verdict or a
// note for the customer.
type PaymentACK struct {
	// Payment is the payee's copy of the message being acknowledged.
	Payment *Payment

	// Memo is an optional note, by convention "ack" or "nack" on channels
	// that signal acceptance through it.
	Memo string
}

// Equal reports whether two outputs have the same amount and script.
func (o *Output) Equal(other *Output) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.Amount == other.Amount && bytes.Equal(o.Script, other.Script)
}

// Equal reports whether two payments are structurally identical: same
// merchant data, same transactions in the same order, same refund outputs and
// the same memo. This is the authenticity check applied to echoed payments, so
// it must not tolerate any divergence.
func (p *Payment) Equal(other *Payment) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !bytes.Equal(p.MerchantData, other.MerchantData) {
		return false
	}
	if len(p.Transactions) != len(other.Transactions) {
		return false
	}
	for i := range p.Transactions {
		if !bytes.Equal(p.Transactions[i], other.Transactions[i]) {
			return false
		}
	}
	if len(p.RefundTo) != len(other.RefundTo) {
		return false
	}
	for i := range p.RefundTo {
		if !p.RefundTo[i].Equal(other.RefundTo[i]) {
			return false
		}
	}
	return p.Memo == other.Memo
}
