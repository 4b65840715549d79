package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress     = errors.New("please fill in delivery address")
	ErrSubmissionInFlight = errors.New("an order is already being placed")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")

	ErrRemoteRejection = errors.New("order was rejected")
	ErrNetworkFailure  = errors.New("order request did not complete")
)

const genericFailureMessage = "Failed to place order"

// SubmitError is returned when the create-order call fails. Kind is ErrRemoteRejection
// or ErrNetworkFailure; Message is safe to show to the user.
type SubmitError struct {
	Kind    error
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
