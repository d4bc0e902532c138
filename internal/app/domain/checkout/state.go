package checkout

import (
	"fmt"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

type State string

const (
	StateCollectingGuestDetails State = "collecting-guest-details"
	StatePrebooking             State = "prebooking"
	StateAwaitingPayment        State = "awaiting-payment"
	StateFinalizing             State = "finalizing"
	StateDone                   State = "done"
	StateError                  State = "error"
)

// Terminal reports whether no further event is accepted.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// InFlight reports whether an upstream call owns the checkout.
func (s State) InFlight() bool {
	return s == StatePrebooking || s == StateFinalizing
}

type Event string

const (
	EventGuestSubmitted      Event = "guest-submitted"
	EventGuestInvalid        Event = "guest-invalid"
	EventPrebookSucceeded    Event = "prebook-succeeded"
	EventPaymentReturned     Event = "payment-returned"
	EventGuestProfileMissing Event = "guest-profile-missing"
	EventFinalizeSucceeded   Event = "finalize-succeeded"
	EventCallFailed          Event = "call-failed"
)

// Effect is a side effect the caller must run after a transition, in order.
type Effect string

const (
	EffectCallPrebook        Effect = "call-prebook"
	EffectSaveGuestProfile   Effect = "save-guest-profile"
	EffectCallBook           Effect = "call-book"
	EffectStoreBooking       Effect = "store-booking"
	EffectDeleteGuestProfile Effect = "delete-guest-profile"
)

type edge struct {
	from  State
	event Event
}

type outcome struct {
	to      State
	effects []Effect
}

var transitions = map[edge]outcome{
	{StateCollectingGuestDetails, EventGuestSubmitted}: {StatePrebooking, []Effect{EffectCallPrebook}},
	{StateCollectingGuestDetails, EventGuestInvalid}:   {StateCollectingGuestDetails, nil},
	{StatePrebooking, EventPrebookSucceeded}:           {StateAwaitingPayment, []Effect{EffectSaveGuestProfile}},
	{StateAwaitingPayment, EventPaymentReturned}:       {StateFinalizing, []Effect{EffectCallBook}},
	{StateAwaitingPayment, EventGuestProfileMissing}:   {StateError, nil},
	{StateFinalizing, EventFinalizeSucceeded}:          {StateDone, []Effect{EffectStoreBooking, EffectDeleteGuestProfile}},
}

// Transition is total over every (state, event) pair. Pairs outside the table
// return ErrInvalidTransition and leave the state unchanged. A failed call
// moves any non-terminal state to error.
func Transition(from State, event Event) (State, []Effect, error) {
	if event == EventCallFailed && !from.Terminal() {
		return StateError, nil, nil
	}
	if out, ok := transitions[edge{from, event}]; ok {
		return out.to, out.effects, nil
	}
	return from, nil, fmt.Errorf("%s on %s: %w", event, from, models.ErrInvalidTransition)
}
