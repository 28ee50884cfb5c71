package directpay

import (
	"context"
	"time"
)

// ============================================================================
// Send Hook Context Types
// ============================================================================

// SendContext contains information passed to before-send hooks
type SendContext struct {
	Ctx       context.Context
	Delivery  Delivery
	Timestamp time.Time
}

// SendResultContext contains a concluded delivery attempt and its context
type SendResultContext struct {
	SendContext
	Outcome  Outcome
	Duration time.Duration
}

// SendFailureContext contains a failed delivery attempt and its context
type SendFailureContext struct {
	SendContext
	Err      error
	Duration time.Duration
}

// ============================================================================
// Send Hook Result Types
// ============================================================================

// BeforeSendHookResult represents the result of a "before" send hook
// If Abort is true, the delivery is skipped and fails with the given Reason
type BeforeSendHookResult struct {
	Abort  bool
	Reason string
}

// SendFailureHookResult represents the result of a send failure hook
// If Recovered is true, the hook's Outcome replaces the failed one
type SendFailureHookResult struct {
	Recovered bool
	Outcome   Outcome
}

// ============================================================================
// Send Hook Function Types
// ============================================================================

// BeforeSendHook is called before a delivery attempt starts
// If it returns a result with Abort=true, nothing is transmitted and the
// delivery fails with the provided reason
type BeforeSendHook func(SendContext) (*BeforeSendHookResult, error)

// AfterSendHook is called after a delivery attempt reached the payee,
// whether acknowledged or rejected
// Any error returned will be logged but will not affect the outcome
type AfterSendHook func(SendResultContext) error

// SendFailureHook is called when a delivery attempt fails
// If it returns a result with Recovered=true, the provided Outcome
// will be reported instead of the failure
type SendFailureHook func(SendFailureContext) (*SendFailureHookResult, error)
