package models

import "fmt"

// AppState lifecycle state of an app. It replaces the independent active/approved flags so
// that approval without a prior approve transition cannot be represented.
type AppState uint8

const (
	AppStatePending   AppState = iota + 1 // active, awaiting review
	AppStateApproved                      // active, approved
	AppStateRejected                      // inactive, approval revoked by an admin
	AppStateWithdrawn                     // inactive, deactivated by the developer before approval
	AppStateDelisted                      // inactive, deactivated by the developer after approval
)

var appStateNames = map[AppState]string{
	AppStatePending:   "pending",
	AppStateApproved:  "approved",
	AppStateRejected:  "rejected",
	AppStateWithdrawn: "withdrawn",
	AppStateDelisted:  "delisted",
}

func (s AppState) String() string {
	if name, ok := appStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// Valid reports whether s is a known state
func (s AppState) Valid() bool {
	_, ok := appStateNames[s]
	return ok
}

// IsActive app is visible for discovery once approved
func (s AppState) IsActive() bool {
	return s == AppStatePending || s == AppStateApproved
}

// IsApproved app passed admin review and was not rejected since
func (s AppState) IsApproved() bool {
	return s == AppStateApproved || s == AppStateDelisted
}

// Transition lifecycle transition
type Transition uint8

const (
	TransitionApprove Transition = iota + 1
	TransitionReject
	TransitionDeactivate
)

func (t Transition) String() string {
	switch t {
	case TransitionApprove:
		return "approve"
	case TransitionReject:
		return "reject"
	case TransitionDeactivate:
		return "deactivate"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// transitions is the complete table; a missing entry is an illegal transition.
// Approving an inactive app keeps it inactive, since nothing reactivates an app.
var transitions = map[Transition]map[AppState]AppState{
	TransitionApprove: {
		AppStatePending:   AppStateApproved,
		AppStateRejected:  AppStateDelisted,
		AppStateWithdrawn: AppStateDelisted,
	},
	TransitionReject: {
		AppStatePending:   AppStateRejected,
		AppStateApproved:  AppStateRejected,
		AppStateRejected:  AppStateRejected,
		AppStateWithdrawn: AppStateRejected,
		AppStateDelisted:  AppStateRejected,
	},
	TransitionDeactivate: {
		AppStatePending:   AppStateWithdrawn,
		AppStateApproved:  AppStateDelisted,
		AppStateRejected:  AppStateRejected,
		AppStateWithdrawn: AppStateWithdrawn,
		AppStateDelisted:  AppStateDelisted,
	},
}

// Next returns the state reached from s by t, false when the transition is illegal
func (s AppState) Next(t Transition) (AppState, bool) {
	next, ok := transitions[t][s]
	return next, ok
}
