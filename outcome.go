package directpay

import "fmt"

// Status classifies how a delivery attempt concluded.
type Status int

const (
	// StatusAcknowledged means the payee received the payment and accepted
	// it.
	StatusAcknowledged Status = iota + 1

	// StatusRejected means the payee answered but did not accept the
	// payment. The transaction may still confirm through the network; the
	// payee just never vouched for it.
	StatusRejected

	// StatusFailed means the payment could not be delivered.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAcknowledged:
		return "acknowledged"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the terminal result of one delivery attempt. Every attempt
// produces exactly one.
type Outcome struct {
	Status Status

	// Memo is the validated acknowledgment memo, when the payee produced
	// one. Empty otherwise.
	Memo string

	// Err describes what went wrong when Status is StatusFailed.
	Err error
}

// Acknowledged returns an outcome for a payment the payee accepted.
func Acknowledged(memo string) Outcome {
	return Outcome{Status: StatusAcknowledged, Memo: memo}
}

// Rejected returns an outcome for a payment the payee answered but did not
// accept.
func Rejected(memo string) Outcome {
	return Outcome{Status: StatusRejected, Memo: memo}
}

// Failed returns an outcome for a payment that could not be delivered.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// Acked reports whether the payee acknowledged the payment.
func (o Outcome) Acked() bool {
	return o.Status == StatusAcknowledged
}
