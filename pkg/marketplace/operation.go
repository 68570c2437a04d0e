package marketplace

import (
	"errors"
	"fmt"
)

// OperationType is the internal canonical lifecycle operation enumeration.
// Every marketplace-specific action vocabulary maps through it.
type OperationType string

const (
	// OperationUnknown is the initial "not yet classified" state. It is never
	// the result of a successful mapping; unrecognized actions are an error.
	OperationUnknown            OperationType = "Unknown"
	OperationActivate           OperationType = "Activate"
	OperationChangePlan         OperationType = "ChangePlan"
	OperationChangeSeatQuantity OperationType = "ChangeSeatQuantity"
	OperationReinstate          OperationType = "Reinstate"
	OperationSuspend            OperationType = "Suspend"
	OperationCancel             OperationType = "Cancel"
	OperationRenew              OperationType = "Renew"
)

// Marketplace action vocabulary. These strings are stable across the
// marketplace API revisions encountered and matching is case-sensitive.
const (
	ActionChangePlan     = "ChangePlan"
	ActionChangeQuantity = "ChangeQuantity"
	ActionSuspend        = "Suspend"
	ActionReinstate      = "Reinstate"
	ActionUnsubscribe    = "Unsubscribe"
	ActionRenew          = "Renew"
)

var actionToOperation = map[string]OperationType{
	ActionChangePlan:     OperationChangePlan,
	ActionChangeQuantity: OperationChangeSeatQuantity,
	ActionSuspend:        OperationSuspend,
	ActionReinstate:      OperationReinstate,
	ActionUnsubscribe:    OperationCancel,
	ActionRenew:          OperationRenew,
}

var operationToAction = map[OperationType]string{
	OperationChangePlan:         ActionChangePlan,
	OperationChangeSeatQuantity: ActionChangeQuantity,
	OperationSuspend:            ActionSuspend,
	OperationReinstate:          ActionReinstate,
	OperationCancel:             ActionUnsubscribe,
	OperationRenew:              ActionRenew,
}

// ParseAction maps a marketplace action string to the canonical operation
// type. There is no fallback: anything outside the recognized vocabulary
// (including case variants) returns ErrUnknownOperationType so that a
// vocabulary drift on the marketplace side surfaces as a hard failure
// instead of a silently misclassified operation.
func ParseAction(action string) (OperationType, error) {
	op, ok := actionToOperation[action]
	if !ok {
		return OperationUnknown, fmt.Errorf("%w: %q", ErrUnknownOperationType, action)
	}
	return op, nil
}

// Action returns the marketplace action string for a canonical operation
// type. Activate and Unknown have no wire representation.
func (t OperationType) Action() (string, error) {
	action, ok := operationToAction[t]
	if !ok {
		return "", errors.Join(ErrUnknownOperationType, fmt.Errorf("operation type %q has no marketplace action", t))
	}
	return action, nil
}
