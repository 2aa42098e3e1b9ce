// Package workflow models the lesson planner approval cycle as a finite
// state machine.
//
// A planner moves Draft -> Submitted -> Approved -> InProgress ->
// SentForSignoff -> SignedOff, with supervisor rejection possible at the
// two review gates. Every transition is role-gated and produces an audit
// stamp (who, when) for the columns of that step. CanTransition is the
// single legality check; status is never assigned directly.
package workflow
