package directpay

import "fmt"

// DeliveryError represents a delivery-specific failure
type DeliveryError struct {
	Code    string
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAborted     = "delivery_aborted"
	ErrCodeBadAddress  = "bad_address"
	ErrCodeConnect     = "connect_failed"
	ErrCodeWrite       = "write_failed"
	ErrCodeRead        = "read_failed"
	ErrCodeBadAck      = "bad_ack"
	ErrCodeHTTPStatus  = "http_status"
	ErrCodeHTTPRequest = "http_request"
)

// NewDeliveryError creates a new delivery error
func NewDeliveryError(code, message string, err error) *DeliveryError {
	return &DeliveryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
