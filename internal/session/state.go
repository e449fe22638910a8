package session

import "github.com/campus-hub/backend/internal/models"

// Phase is the reconciler's position in the sign-in state machine.
type Phase int

const (
	PhaseSignedOut Phase = iota
	PhaseAuthenticating
	PhaseReconciling
	PhaseSignedIn
	PhaseFailed
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseSignedOut:
		return "signed_out"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseReconciling:
		return "reconciling"
	case PhaseSignedIn:
		return "signed_in"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// State is the resolved session state published to dependents. Either a
// fully resolved user (SignedIn) or none; no partial state is ever exposed.
type State struct {
	Phase Phase
	User  *models.User
	Err   error
}

// IsLoading reports whether a reconciliation is between request and resolution.
func (s State) IsLoading() bool {
	return s.Phase == PhaseAuthenticating || s.Phase == PhaseReconciling
}

// Terminal reports whether the state is an outcome rather than a transition.
func (s State) Terminal() bool {
	return s.Phase == PhaseSignedOut || s.Phase == PhaseSignedIn || s.Phase == PhaseFailed
}
