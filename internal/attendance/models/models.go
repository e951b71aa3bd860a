// Package models holds the attendance domain vocabulary: the event record,
// the closed kind enum, and the transition table that defines which punches
// are legal from a user's current state.
package models

import (
	"time"

	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
)

// Kind identifies one of the four punch types. The enum is closed; anything
// else is rejected at the boundary.
type Kind string

const (
	KindClockIn    Kind = "clock_in"
	KindBreakStart Kind = "break_start"
	KindBreakEnd   Kind = "break_end"
	KindClockOut   Kind = "clock_out"
)

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindClockIn, KindBreakStart, KindBreakEnd, KindClockOut}
}

// IsValid checks if the kind is one of the supported enum values.
func (k Kind) IsValid() bool {
	switch k {
	case KindClockIn, KindBreakStart, KindBreakEnd, KindClockOut:
		return true
	}
	return false
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// ParseKind creates a Kind from a string, validating it.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid event kind: "+s)
	}
	return k, nil
}

// transitions maps each latest kind to the kinds that may legally follow it.
// A nil latest (no events yet) is handled by AllowedNext/CanFollow directly.
var transitions = map[Kind][]Kind{
	KindClockIn:    {KindBreakStart, KindClockOut},
	KindBreakStart: {KindBreakEnd},
	KindBreakEnd:   {KindBreakStart, KindClockOut},
	KindClockOut:   {KindClockIn},
}

// AllowedNext returns the kinds that may legally follow the latest recorded
// kind. A nil latest means the user has no events yet, which permits only a
// clock-in. The presentation layer derives its offered actions from this on
// every render; enabled/disabled is never stored.
func AllowedNext(latest *Kind) []Kind {
	if latest == nil {
		return []Kind{KindClockIn}
	}
	next, ok := transitions[*latest]
	if !ok {
		return nil
	}
	out := make([]Kind, len(next))
	copy(out, next)
	return out
}

// CanFollow reports whether k is a legal next event after latest. It is pure
// and total: unknown kinds and combinations outside the table return false.
func (k Kind) CanFollow(latest *Kind) bool {
	for _, allowed := range AllowedNext(latest) {
		if allowed == k {
			return true
		}
	}
	return false
}

// State is the derived attendance state of a user. It is computed from the
// latest event only and never persisted.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StateOnBreak State = "on_break"
)

// StateOf derives the user's current state from the latest event kind.
// A closed shift is indistinguishable from never having clocked in.
func StateOf(latest *Kind) State {
	if latest == nil {
		return StateIdle
	}
	switch *latest {
	case KindClockIn, KindBreakEnd:
		return StateWorking
	case KindBreakStart:
		return StateOnBreak
	default:
		return StateIdle
	}
}

// Event is a single immutable punch in a user's ledger. Events are append
// only: they are created exactly once by a permitted transition and never
// updated. Per user, events are totally ordered by (OccurredAt, ID); the ID
// is store-assigned and breaks timestamp ties by insertion order.
type Event struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the event's own fields, not its legality in a sequence.
func (e *Event) Validate() error {
	if e.UserID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if !e.Kind.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "invalid event kind: "+e.Kind.String())
	}
	if e.OccurredAt.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "event timestamp is required")
	}
	return nil
}

// RejectedTransition describes a punch refused by the state machine. It is
// carried inside a domain error so handlers can render which rule was broken.
type RejectedTransition struct {
	Latest    *Kind
	Requested Kind
}

// Error satisfies the error interface with a user-renderable description.
func (r *RejectedTransition) Error() string {
	if r.Latest == nil {
		return "cannot record " + r.Requested.String() + ": no shift is open"
	}
	return "cannot record " + r.Requested.String() + " after " + r.Latest.String()
}

// Reject wraps a RejectedTransition in the invalid_transition domain error.
func Reject(latest *Kind, requested Kind) error {
	r := &RejectedTransition{Latest: latest, Requested: requested}
	return dErrors.Wrap(r, dErrors.CodeInvalidTransition, r.Error())
}
