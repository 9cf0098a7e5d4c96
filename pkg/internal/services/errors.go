package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound          = errors.New("no account matches that phone number, check the number and try again")
	ErrInsufficientAllowance = errors.New("no active promo covers this action, purchase a promo first")
	ErrConversationForbidden = errors.New("you are not a participant of this conversation")
)

// InsufficientCreditsError carries the exact shortfall so the caller can tell
// the user how much to top up.
type InsufficientCreditsError struct {
	Shortfall float64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits, you need %.0f more credits", e.Shortfall)
}

// CompensationError marks the worst purchase outcome: credits were debited,
// the grant write failed, and the refund failed too. It must never be
// silently dropped, the account is under-credited until reconciled.
type CompensationError struct {
	AccountID uint
	Amount    float64
	Cause     error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("failed to refund %.2f credits to account #%d after a failed promo activation: %v", e.Amount, e.AccountID, e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}
