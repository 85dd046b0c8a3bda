package schedule

import (
	"fmt"

	"github.com/campushub/venue-booking/internal/model"
)

// Action names a requested transition of a booking request.
type Action string

const (
	ActionApprove Action = "approve" // pending -> approved (admin)
	ActionReject  Action = "reject"  // pending -> rejected (admin, reason required)
	ActionCancel  Action = "cancel"  // pending -> cancelled (requester or admin)
	ActionRevoke  Action = "revoke"  // approved -> cancelled (admin)
)

// Actor identifies who is requesting a transition. The role gates
// which actions are permitted: approve, reject and revoke require
// admin; cancel requires the requester themselves or an admin.
type Actor struct {
	ID   uint64
	Role string
}

// transitions is the legal state machine. Everything not listed fails
// with IllegalTransition; in particular all three terminal states
// admit no further actions.
var transitions = map[model.BookingStatus]map[Action]model.BookingStatus{
	model.StatusPending: {
		ActionApprove: model.StatusApproved,
		ActionReject:  model.StatusRejected,
		ActionCancel:  model.StatusCancelled,
	},
	model.StatusApproved: {
		ActionRevoke: model.StatusCancelled,
	},
}

// nextStatus resolves the target state for action from the given
// state, or an IllegalTransition when the move is not in the table.
func nextStatus(from model.BookingStatus, action Action) (model.BookingStatus, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return "", &IllegalTransition{Reason: fmt.Sprintf("cannot %s a %s request", action, from)}
}

// authorize checks the actor's capability for the requested action on
// req, returning PermissionDenied when the role or identity does not
// allow it. HTTP layers additionally guard admin routes with role
// middleware; this check is the authoritative one.
func authorize(actor Actor, action Action, req *model.BookingRequest) error {
	switch action {
	case ActionApprove, ActionReject, ActionRevoke:
		if actor.Role != model.RoleAdmin {
			return &PermissionDenied{Reason: fmt.Sprintf("role %s may not %s requests", actor.Role, action)}
		}
	case ActionCancel:
		if actor.Role != model.RoleAdmin && actor.ID != req.RequesterID {
			return &PermissionDenied{Reason: "only the requester or an admin may cancel"}
		}
	default:
		return &IllegalTransition{Reason: fmt.Sprintf("unknown action %q", action)}
	}
	return nil
}
