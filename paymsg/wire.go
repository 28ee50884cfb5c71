package paymsg

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

// Protobuf wire types used by the payment message set.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// Field numbers from the reference payment protocol definitions. The key of
// an encoded field is fieldNumber<<3 | wireType.
const (
	fieldOutputAmount = 1 // varint
	fieldOutputScript = 2 // bytes

	fieldPaymentMerchantData = 1 // bytes
	fieldPaymentTransactions = 2 // bytes, repeated
	fieldPaymentRefundTo     = 3 // message, repeated
	fieldPaymentMemo         = 4 // string

	fieldACKPayment = 1 // message
	fieldACKMemo    = 2 // string
)

// Marshal encodes the output in protobuf wire format. Both fields are always
// emitted so that encoding is deterministic.
func (o *Output) Marshal() ([]byte, error) {
	buf := make([]byte, 0, 12+len(o.Script))
	buf = appendVarintField(buf, fieldOutputAmount, o.Amount)
	buf = appendBytesField(buf, fieldOutputScript, o.Script)
	return buf, nil
}

// Unmarshal decodes an output, replacing the receiver's contents. Unknown
// fields are skipped. A missing script is an error: the reference definitions
// require it.
func (o *Output) Unmarshal(data []byte) error {
	*o = Output{}
	seenScript := false
	for len(data) > 0 {
		fieldNum, wireType, rest, err := consumeKey(data)
		if err != nil {
			return err
		}
		data = rest
		switch {
		case fieldNum == fieldOutputAmount && wireType == wireVarint:
			o.Amount, data, err = consumeVarint(data)
		case fieldNum == fieldOutputScript && wireType == wireBytes:
			o.Script, data, err = consumeBytes(data)
			seenScript = true
		default:
			data, err = skipField(data, wireType)
		}
		if err != nil {
			return err
		}
	}
	if !seenScript {
		return fmt.Errorf("output is missing its script")
	}
	return nil
}

// Marshal encodes the payment in protobuf wire format. Fields are written in
// ascending field order with repeated entries in slice order, matching the
// canonical encoder output byte for byte.
func (p *Payment) Marshal() ([]byte, error) {
	buf := make([]byte, 0, 64)
	if len(p.MerchantData) > 0 {
		buf = appendBytesField(buf, fieldPaymentMerchantData, p.MerchantData)
	}
	for _, tx := range p.Transactions {
		buf = appendBytesField(buf, fieldPaymentTransactions, tx)
	}
	for _, out := range p.RefundTo {
		enc, err := out.Marshal()
		if err != nil {
			return nil, err
		}
		buf = appendBytesField(buf, fieldPaymentRefundTo, enc)
	}
	if p.Memo != "" {
		buf = appendBytesField(buf, fieldPaymentMemo, []byte(p.Memo))
	}
	return buf, nil
}

// Unmarshal decodes a payment, replacing the receiver's contents. Unknown
// fields are skipped so that messages from newer peers still parse.
func (p *Payment) Unmarshal(data []byte) error {
	*p = Payment{}
	for len(data) > 0 {
		fieldNum, wireType, rest, err := consumeKey(data)
		if err != nil {
			return err
		}
		data = rest
		switch {
		case fieldNum == fieldPaymentMerchantData && wireType == wireBytes:
			p.MerchantData, data, err = consumeBytes(data)
		case fieldNum == fieldPaymentTransactions && wireType == wireBytes:
			var tx []byte
			tx, data, err = consumeBytes(data)
			if err == nil {
				p.Transactions = append(p.Transactions, tx)
			}
		case fieldNum == fieldPaymentRefundTo && wireType == wireBytes:
			var enc []byte
			enc, data, err = consumeBytes(data)
			if err == nil {
				out := new(Output)
				if err = out.Unmarshal(enc); err == nil {
					p.RefundTo = append(p.RefundTo, out)
				}
			}
		case fieldNum == fieldPaymentMemo && wireType == wireBytes:
			var memo []byte
			memo, data, err = consumeBytes(data)
			p.Memo = string(memo)
		default:
			data, err = skipField(data, wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the acknowledgment in protobuf wire format.
func (a *PaymentACK) Marshal() ([]byte, error) {
	buf := make([]byte, 0, 64)
	if a.Payment != nil {
		enc, err := a.Payment.Marshal()
		if err != nil {
			return nil, err
		}
		buf = appendBytesField(buf, fieldACKPayment, enc)
	}
	if a.Memo != "" {
		buf = appendBytesField(buf, fieldACKMemo, []byte(a.Memo))
	}
	return buf, nil
}

// Unmarshal decodes an acknowledgment, replacing the receiver's contents. An
// acknowledgment without the echoed payment is rejected as malformed: the
// reference definitions require the field, and without it the acknowledgment
// cannot be authenticated.
func (a *PaymentACK) Unmarshal(data []byte) error {
	*a = PaymentACK{}
	for len(data) > 0 {
		fieldNum, wireType, rest, err := consumeKey(data)
		if err != nil {
			return err
		}
		data = rest
		switch {
		case fieldNum == fieldACKPayment && wireType == wireBytes:
			var enc []byte
			enc, data, err = consumeBytes(data)
			if err == nil {
				a.Payment = new(Payment)
				err = a.Payment.Unmarshal(enc)
			}
		case fieldNum == fieldACKMemo && wireType == wireBytes:
			var memo []byte
			memo, data, err = consumeBytes(data)
			a.Memo = string(memo)
		default:
			data, err = skipField(data, wireType)
		}
		if err != nil {
			return err
		}
	}
	if a.Payment == nil {
		return fmt.Errorf("payment ack is missing the echoed payment")
	}
	return nil
}

// EncodePaymentACK builds an encoded PaymentACK around a payment in its
// received wire form. Echoing the original bytes rather than a re-encoded
// copy keeps fields this implementation does not know about intact, so the
// payer's authenticity check passes regardless of who produced the payment.
func EncodePaymentACK(rawPayment []byte, memo string) []byte {
	buf := appendBytesField(nil, fieldACKPayment, rawPayment)
	if memo != "" {
		buf = appendBytesField(buf, fieldACKMemo, []byte(memo))
	}
	return buf
}

func appendVarintField(buf []byte, fieldNum uint64, v uint64) []byte {
	buf = append(buf, varint.ToUvarint(fieldNum<<3|wireVarint)...)
	return append(buf, varint.ToUvarint(v)...)
}

func appendBytesField(buf []byte, fieldNum uint64, b []byte) []byte {
	buf = append(buf, varint.ToUvarint(fieldNum<<3|wireBytes)...)
	buf = append(buf, varint.ToUvarint(uint64(len(b)))...)
	return append(buf, b...)
}

func consumeKey(data []byte) (fieldNum, wireType uint64, rest []byte, err error) {
	key, n, err := varint.FromUvarint(data)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("reading field key: %w", err)
	}
	return key >> 3, key & 7, data[n:], nil
}

func consumeVarint(data []byte) (uint64, []byte, error) {
	v, n, err := varint.FromUvarint(data)
	if err != nil {
		return 0, nil, fmt.Errorf("reading varint field: %w", err)
	}
	return v, data[n:], nil
}

func consumeBytes(data []byte) ([]byte, []byte, error) {
	ln, n, err := varint.FromUvarint(data)
	if err != nil {
		return nil, nil, fmt.Errorf("reading field length: %w", err)
	}
	data = data[n:]
	if ln > uint64(len(data)) {
		return nil, nil, fmt.Errorf("field length %d exceeds remaining %d bytes", ln, len(data))
	}
	return data[:ln], data[ln:], nil
}

func skipField(data []byte, wireType uint64) ([]byte, error) {
	switch wireType {
	case wireVarint:
		_, rest, err := consumeVarint(data)
		return rest, err
	case wireFixed64:
		if len(data) < 8 {
			return nil, fmt.Errorf("truncated 64-bit field")
		}
		return data[8:], nil
	case wireBytes:
		_, rest, err := consumeBytes(data)
		return rest, err
	case wireFixed32:
		if len(data) < 4 {
			return nil, fmt.Errorf("truncated 32-bit field")
		}
		return data[4:], nil
	default:
		return nil, fmt.Errorf("unsupported wire type %d", wireType)
	}
}
