package directpay

import "context"

// Transport hands a payment to a payee over one concrete channel and reports
// how the attempt concluded. Implementations exist for HTTP endpoints and for
// short-range radio links.
type Transport interface {
	// Supports reports whether the transport can carry deliveries of the
	// given standard. Handing Deliver a delivery it does not support is a
	// caller bug and panics.
	Supports(std Standard) bool

	// Deliver transmits the delivery and blocks until the outcome is known.
	// Transient faults never panic; they surface as a failed outcome.
	Deliver(ctx context.Context, d Delivery) Outcome
}

// ResultCallback receives the single outcome of an asynchronous delivery.
// Exactly one of its methods is invoked per Send, on the sender's home
// executor.
type ResultCallback interface {
	// OnResult is called when the payment reached the payee. ack reports
	// whether the payee acknowledged it; false means the payee answered and
	// declined.
	OnResult(ack bool)

	// OnFail is called when the payment could not be delivered at all.
	OnFail(err error)
}

// ResultCallbackFuncs adapts two functions to the ResultCallback interface.
// A nil function ignores that outcome.
type ResultCallbackFuncs struct {
	Result func(ack bool)
	Fail   func(err error)
}

// OnResult calls c.Result.
func (c ResultCallbackFuncs) OnResult(ack bool) {
	if c.Result != nil {
		c.Result(ack)
	}
}

// OnFail calls c.Fail.
func (c ResultCallbackFuncs) OnFail(err error) {
	if c.Fail != nil {
		c.Fail(err)
	}
}

// Executor runs functions on some execution context: a fresh goroutine, a
// serialized queue, an event loop. Execute must accept the function and
// return promptly; the function itself runs on the executor's context, not
// the submitter's.
type Executor interface {
	Execute(fn func())
}

// TxReceiver takes delivery of transactions on the payee side. Returning an
// error refuses the transaction, which acceptors report back to the payer as
// a negative acknowledgment.
type TxReceiver interface {
	ReceiveTx(ctx context.Context, tx Transaction) error
}

// TxReceiverFunc adapts a function to the TxReceiver interface.
type TxReceiverFunc func(ctx context.Context, tx Transaction) error

// ReceiveTx calls f.
func (f TxReceiverFunc) ReceiveTx(ctx context.Context, tx Transaction) error {
	return f(ctx, tx)
}
