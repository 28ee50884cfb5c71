package paymsg

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// Refund tells the payee where and how much to send back should the payment
// be returned. Amount is in satoshis.
type Refund struct {
	Address btcutil.Address
	Amount  *big.Int
}

// BuildPayment assembles the Payment message for a single signed raw
// transaction. refund, memo and merchantData are all optional; merchantData
// must be echoed exactly as it appeared in the payment request.
//
// A refund missing its address or amount, or with an amount that is negative
// or does not fit a signed 64-bit integer, is a caller bug and panics before
// anything is sent. Deriving the refund script fails for address types
// without a standard script form; that is reported as an error since the
// address originates in request data, not in code.
func BuildPayment(rawTx []byte, refund *Refund, memo string, merchantData []byte) (*Payment, error) {
	p := &Payment{Transactions: [][]byte{rawTx}}
	if len(merchantData) > 0 {
		p.MerchantData = merchantData
	}
	if refund != nil {
		switch {
		case refund.Address == nil:
			panic("paymsg: refund has no address")
		case refund.Amount == nil:
			panic("paymsg: refund has no amount")
		case refund.Amount.Sign() < 0 || !refund.Amount.IsInt64():
			panic(fmt.Sprintf("paymsg: refund amount %s outside the signed 64-bit range", refund.Amount))
		}
		script, err := txscript.PayToAddrScript(refund.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to build refund script for %s: %w", refund.Address, err)
		}
		p.RefundTo = []*Output{{Amount: refund.Amount.Uint64(), Script: script}}
	}
	if memo != "" {
		p.Memo = memo
	}
	return p, nil
}
