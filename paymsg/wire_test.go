package paymsg

import (
	"bytes"
	"testing"
)

func samplePayment() *Payment {
	return &Payment{
		MerchantData: []byte{0xca, 0xfe},
		Transactions: [][]byte{{0x01, 0x02, 0x03}},
		RefundTo:     []*Output{{Amount: 600, Script: []byte{0x6a}}},
		Memo:         "hi",
	}
}

// samplePaymentWire is the canonical encoding of samplePayment, verified
// against the reference protobuf encoder.
var samplePaymentWire = []byte{
	0x0a, 0x02, 0xca, 0xfe, // merchant_data
	0x12, 0x03, 0x01, 0x02, 0x03, // transactions[0]
	0x1a, 0x06, 0x08, 0xd8, 0x04, 0x12, 0x01, 0x6a, // refund_to[0]
	0x22, 0x02, 0x68, 0x69, // memo
}

func TestPaymentMarshalGolden(t *testing.T) {
	got, err := samplePayment().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(got, samplePaymentWire) {
		t.Errorf("encoded payment = %x, want %x", got, samplePaymentWire)
	}
}

func TestPaymentMarshalEmpty(t *testing.T) {
	got, err := (&Payment{}).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("encoded empty payment = %x, want no bytes", got)
	}
}

func TestPaymentACKMarshalGolden(t *testing.T) {
	ack := &PaymentACK{Payment: samplePayment(), Memo: "ack"}
	got, err := ack.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := append([]byte{0x0a, byte(len(samplePaymentWire))}, samplePaymentWire...)
	want = append(want, 0x12, 0x03, 'a', 'c', 'k')
	if !bytes.Equal(got, want) {
		t.Errorf("encoded ack = %x, want %x", got, want)
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	sent := samplePayment()
	enc, err := sent.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got Payment
	if err := got.Unmarshal(enc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.Equal(sent) {
		t.Errorf("decoded payment %+v does not match original %+v", got, sent)
	}
}

func TestPaymentACKRoundTrip(t *testing.T) {
	ack := &PaymentACK{Payment: samplePayment(), Memo: "thanks for your purchase"}
	enc, err := ack.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got PaymentACK
	if err := got.Unmarshal(enc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.Payment.Equal(ack.Payment) {
		t.Errorf("decoded echoed payment does not match original")
	}
	if got.Memo != ack.Memo {
		t.Errorf("decoded memo = %q, want %q", got.Memo, ack.Memo)
	}
}

func TestPaymentUnmarshalSkipsUnknownFields(t *testing.T) {
	data := append([]byte(nil), samplePaymentWire...)
	data = append(data,
		0x48, 0x01, // field 9, varint
		0x55, 0xde, 0xad, 0xbe, 0xef, // field 10, 32-bit
		0x59, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, // field 11, 64-bit
		0xc2, 0x0c, 0x02, 0xaa, 0xbb, // field 200, bytes
	)
	var got Payment
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.Equal(samplePayment()) {
		t.Errorf("known fields changed while skipping unknown ones: %+v", got)
	}
}

func TestUnmarshalRejectsMalformedData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated payment", samplePaymentWire[:len(samplePaymentWire)-1]},
		{"field length past end", []byte{0x0a, 0xff, 0x01}},
		{"group wire type", []byte{0x0b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payment
			if err := p.Unmarshal(tt.data); err == nil {
				t.Errorf("Unmarshal(%x) succeeded, want error", tt.data)
			}
		})
	}
}

func TestOutputUnmarshalRequiresScript(t *testing.T) {
	var o Output
	if err := o.Unmarshal([]byte{0x08, 0x01}); err == nil {
		t.Error("Unmarshal of output without script succeeded, want error")
	}
}

func TestPaymentACKUnmarshalRequiresPayment(t *testing.T) {
	var a PaymentACK
	if err := a.Unmarshal([]byte{0x12, 0x03, 'a', 'c', 'k'}); err == nil {
		t.Error("Unmarshal of ack without echoed payment succeeded, want error")
	}
}

// Corrupting any single byte of the echoed payment must prevent the
// acknowledgment from validating, whether the corruption breaks the parse or
// merely changes a field.
func TestAckValidationRejectsCorruption(t *testing.T) {
	sent := samplePayment()
	ackBytes, err := (&PaymentACK{Payment: sent, Memo: MemoAck}).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var control PaymentACK
	if err := control.Unmarshal(ackBytes); err != nil {
		t.Fatalf("Unmarshal of pristine ack failed: %v", err)
	}
	if memo, ok := ValidateAck(&control, sent); !ok || memo != MemoAck {
		t.Fatalf("pristine ack did not validate: memo=%q ok=%v", memo, ok)
	}

	paymentEnd := len(ackBytes) - (2 + len(MemoAck)) // everything before the ack memo field
	for i := 0; i < paymentEnd; i++ {
		corrupted := append([]byte(nil), ackBytes...)
		corrupted[i] ^= 0xff
		var ack PaymentACK
		if err := ack.Unmarshal(corrupted); err != nil {
			continue
		}
		if memo, ok := ValidateAck(&ack, sent); ok {
			t.Errorf("ack with byte %d corrupted still validated (memo %q)", i, memo)
		}
	}
}

func TestEncodePaymentACKEchoesRawBytes(t *testing.T) {
	// A payment carrying a field this implementation does not know about
	// must be echoed verbatim, not re-encoded from the parsed view.
	raw := append([]byte(nil), samplePaymentWire...)
	raw = append(raw, 0x48, 0x2a) // field 9, varint
	enc := EncodePaymentACK(raw, MemoAck)

	var ack PaymentACK
	if err := ack.Unmarshal(enc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !ack.Payment.Equal(samplePayment()) {
		t.Error("decoded echo does not match the known fields")
	}
	if ack.Memo != MemoAck {
		t.Errorf("memo = %q, want %q", ack.Memo, MemoAck)
	}
	if !bytes.Equal(enc[2:2+len(raw)], raw) {
		t.Error("embedded payment bytes were altered")
	}
}

func TestEqualNilHandling(t *testing.T) {
	p := samplePayment()
	if !(*Payment)(nil).Equal(nil) {
		t.Error("nil payments should compare equal")
	}
	if p.Equal(nil) || (*Payment)(nil).Equal(p) {
		t.Error("payment should not equal nil")
	}
	if !(*Output)(nil).Equal(nil) {
		t.Error("nil outputs should compare equal")
	}
	if p.RefundTo[0].Equal(nil) {
		t.Error("output should not equal nil")
	}
}
