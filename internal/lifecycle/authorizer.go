package lifecycle

import (
	"lead-system/internal/entities"
	"lead-system/pkg/constants"
)

// Decision is the outcome of an authorization check for a transition attempt.
type Decision int

const (
	Denied Decision = iota
	Direct
	ProposeOnly
)

func (d Decision) String() string {
	switch d {
	case Direct:
		return "DIRECT"
	case ProposeOnly:
		return "PROPOSE_ONLY"
	default:
		return "DENIED"
	}
}

// condition identifies the single predicate attached to a policy rule.
// All predicates are evaluated in one place, so the rules themselves stay
// pure data.
type condition int

const (
	condAlways condition = iota
	condSameCentre
	condAssignedCommercial
	condOwnNewSlot
)

type rule struct {
	decision Decision
	states   []constants.RecordState // nil = any target state
	cond     condition
}

func (r rule) matchesState(target constants.RecordState) bool {
	if r.states == nil {
		return true
	}
	for _, s := range r.states {
		if s == target {
			return true
		}
	}
	return false
}

// policyTable maps each role to an ordered rule list; the first rule whose
// state filter and condition both hold wins, otherwise the attempt is denied.
// Adding a role or a state is a change to this table only.
var policyTable = map[constants.Role][]rule{
	constants.RoleAdmin: {
		{decision: Direct, cond: condAlways},
	},
	constants.RoleConfirmer: {
		// cross-centre authority over confirmation outcomes
		{decision: Direct, cond: condAlways},
	},
	constants.RoleManager: {
		{decision: Direct, cond: condSameCentre},
	},
	constants.RoleCommercial: {
		{decision: Direct, states: []constants.RecordState{constants.StateConfirmed}, cond: condOwnNewSlot},
		{decision: ProposeOnly, cond: condAssignedCommercial},
	},
}

// Attempt carries the authorization-relevant facts of a transition request.
// NewSlot is true when the submission supplies an appointment for a record
// that has none yet (a brand-new slot).
type Attempt struct {
	Actor   *entities.User
	Record  *entities.Record
	Target  constants.RecordState
	NewSlot bool
}

func holds(c condition, a Attempt) bool {
	switch c {
	case condAlways:
		return true
	case condSameCentre:
		return a.Actor.SameCentre(a.Record.CentreID)
	case condAssignedCommercial:
		return a.Record.IsAssignedCommercial(a.Actor.ID)
	case condOwnNewSlot:
		return a.NewSlot && a.Record.IsAssignedCommercial(a.Actor.ID)
	}
	return false
}

// Authorize decides whether the actor may write the target state directly,
// only propose it, or not touch the record at all.
func Authorize(a Attempt) Decision {
	rules, ok := policyTable[a.Actor.Role]
	if !ok {
		return Denied
	}
	for _, r := range rules {
		if r.matchesState(a.Target) && holds(r.cond, a) {
			return r.decision
		}
	}
	return Denied
}
