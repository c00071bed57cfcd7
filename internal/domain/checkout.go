package domain

import "github.com/nooktextiles/nook/internal/fiscal"

// CheckoutState is the explicit state of a single checkout attempt.
// The orchestrator drives the sequence
//
//	Idle -> CreatingIntent -> ConfirmingPayment -> GeneratingReceipt
//	     -> PersistingOrder -> SendingEmail -> Completed
//
// Failed is terminal and reachable only from CreatingIntent and
// ConfirmingPayment: once payment has succeeded the attempt always runs
// to Completed, degrading instead of aborting.
type CheckoutState string

const (
	CheckoutStateIdle              CheckoutState = "idle"
	CheckoutStateCreatingIntent    CheckoutState = "creating_intent"
	CheckoutStateConfirmingPayment CheckoutState = "confirming_payment"
	CheckoutStateGeneratingReceipt CheckoutState = "generating_receipt"
	CheckoutStatePersistingOrder   CheckoutState = "persisting_order"
	CheckoutStateSendingEmail      CheckoutState = "sending_email"
	CheckoutStateCompleted         CheckoutState = "completed"
	CheckoutStateFailed            CheckoutState = "failed"
)

// IsTerminal reports whether the state ends the checkout attempt.
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCompleted || s == CheckoutStateFailed
}

func (s CheckoutState) String() string {
	return string(s)
}

// checkoutTransitions enumerates the legal state transitions.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:              {CheckoutStateCreatingIntent},
	CheckoutStateCreatingIntent:    {CheckoutStateConfirmingPayment, CheckoutStateFailed},
	CheckoutStateConfirmingPayment: {CheckoutStateGeneratingReceipt, CheckoutStateFailed},
	CheckoutStateGeneratingReceipt: {CheckoutStatePersistingOrder},
	CheckoutStatePersistingOrder:   {CheckoutStateSendingEmail},
	CheckoutStateSendingEmail:      {CheckoutStateCompleted},
}

// CanTransition reports whether moving from one checkout state to another
// is legal. Terminal states have no outgoing transitions.
func CanTransition(from, to CheckoutState) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckoutRequest is the validated input for one checkout attempt.
// PaymentMethodID identifies the (tokenized) card; UserID may be empty
// for guest checkout.
type CheckoutRequest struct {
	SessionID       string          `json:"sessionId" validate:"required"`
	UserID          string          `json:"userId"`
	ShippingAddress ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethodID string          `json:"paymentMethodId" validate:"required"`
}

// CheckoutConfirmation is the view-model yielded on Completed for the
// confirmation page. FiscalReceipt and OrderNumber may be empty when the
// respective collaborator degraded; Warnings records why.
type CheckoutConfirmation struct {
	PaymentIntentID string          `json:"paymentIntentId"`
	OrderNumber     string          `json:"orderNumber,omitempty"`
	FiscalReceipt   *fiscal.Receipt `json:"fiscalReceipt,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
}
