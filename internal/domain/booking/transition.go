package booking

import "errors"

var ErrTransitionNotAllowed = errors.New("booking: status transition not allowed")

// TransitionPolicy decides which status changes an update may perform. The
// legacy system never enforced an ordering, so the permissive policy is the
// default; the strict policy is opt-in and does not change the call contract.
type TransitionPolicy interface {
	Allowed(from, to Status) bool
}

// PermissivePolicy accepts any transition between known statuses.
type PermissivePolicy struct{}

func (PermissivePolicy) Allowed(from, to Status) bool { return true }

// StrictPolicy enforces the forward order
// draft -> tentative -> confirmed -> checked-in -> checked-out, with
// cancelled reachable from any non-terminal status. Staying put is allowed.
type StrictPolicy struct{}

var strictOrder = map[Status]int{
	StatusDraft:      0,
	StatusTentative:  1,
	StatusConfirmed:  2,
	StatusCheckedIn:  3,
	StatusCheckedOut: 4,
}

func (StrictPolicy) Allowed(from, to Status) bool {
	if from == to {
		return true
	}
	if to == StatusCancelled {
		return from != StatusCheckedOut && from != StatusCancelled
	}
	fromRank, ok := strictOrder[from]
	if !ok {
		return false
	}
	toRank, ok := strictOrder[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// PolicyFromMode maps a configuration value to a policy, defaulting to
// permissive for unknown values.
func PolicyFromMode(mode string) TransitionPolicy {
	if mode == "strict" {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
