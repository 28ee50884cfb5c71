package directpay

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/directpay/directpay-go/paymsg"
)

// Standard identifies the wire form used to hand a payment to the payee.
type Standard int

const (
	// StandardBIP21 sends the raw signed transaction with no envelope, the
	// form used for plain bitcoin: URI handoffs.
	StandardBIP21 Standard = iota + 1

	// StandardBIP70 wraps the transaction in a payment protocol Payment
	// message carrying refund outputs, a memo and merchant data, and expects
	// a PaymentACK in return.
	StandardBIP70
)

func (s Standard) String() string {
	switch s {
	case StandardBIP21:
		return "BIP21"
	case StandardBIP70:
		return "BIP70"
	default:
		return fmt.Sprintf("Standard(%d)", int(s))
	}
}

// Transaction is a fully signed transaction in serialized wire form, ready to
// be handed to a payee exactly as it would be broadcast.
type Transaction []byte

// TxID returns the hex transaction id of the serialized transaction, used to
// identify the payment in logs and hook contexts.
func (tx Transaction) TxID() string {
	return chainhash.DoubleHashH(tx).String()
}

// Delivery describes one payment to be handed to a payee.
type Delivery struct {
	// Standard selects the wire form.
	Standard Standard

	// Tx is the signed transaction being delivered.
	Tx Transaction

	// Payment is the payment message for StandardBIP70 deliveries and must
	// wrap the same transaction as Tx. It is ignored for StandardBIP21.
	Payment *paymsg.Payment
}

// SimpleDelivery returns a StandardBIP21 delivery of tx.
func SimpleDelivery(tx Transaction) Delivery {
	return Delivery{Standard: StandardBIP21, Tx: tx}
}

// PaymentDelivery returns a StandardBIP70 delivery of tx, assembling the
// payment message from the optional refund instruction, memo and merchant
// data. Malformed refund instructions panic; a refund address without a
// standard script form is reported as an error. See paymsg.BuildPayment.
func PaymentDelivery(tx Transaction, refund *paymsg.Refund, memo string, merchantData []byte) (Delivery, error) {
	p, err := paymsg.BuildPayment(tx, refund, memo, merchantData)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Standard: StandardBIP70, Tx: tx, Payment: p}, nil
}
