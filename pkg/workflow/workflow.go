package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/listaccess"
	"github.com/stepup-hq/stepup/pkg/roles"
)

// State is a lesson planner document status. Draft is the initial state;
// SignedOff and Rejected end a cycle (restarting a rejected planner is a
// caller decision, not an automatic transition).
type State string

const (
	StateDraft          State = "Draft"
	StateSubmitted      State = "Submitted"
	StateApproved       State = "Approved"
	StateInProgress     State = "InProgress"
	StateSentForSignoff State = "SentForSignoff"
	StateSignedOff      State = "SignedOff"
	StateRejected       State = "Rejected"
)

// Action is a workflow verb a user can attempt on a planner document.
type Action string

const (
	ActionSubmit         Action = "submit"
	ActionApprove        Action = "approve"
	ActionStart          Action = "start"
	ActionSendForSignoff Action = "sendForSignoff"
	ActionSignoff        Action = "signoff"
	ActionReject         Action = "reject"
)

// statusField is the list column holding the document state.
const statusField = "Status"

type transitionKey struct {
	from   State
	action Action
	role   roles.Role
}

// transitions is the complete rule set. Anything not listed is disallowed.
var transitions = map[transitionKey]State{
	{StateDraft, ActionSubmit, roles.RoleEducator}:              StateSubmitted,
	{StateSubmitted, ActionApprove, roles.RoleSupervisor}:       StateApproved,
	{StateApproved, ActionStart, roles.RoleEducator}:            StateInProgress,
	{StateInProgress, ActionSendForSignoff, roles.RoleEducator}: StateSentForSignoff,
	{StateSentForSignoff, ActionSignoff, roles.RoleSupervisor}:  StateSignedOff,
	{StateSubmitted, ActionReject, roles.RoleSupervisor}:        StateRejected,
	{StateSentForSignoff, ActionReject, roles.RoleSupervisor}:   StateRejected,
}

// CanTransition reports whether role may apply action to a document in the
// current state. Pure: no side effects, same inputs always give the same
// answer.
func CanTransition(current State, action Action, role roles.Role) bool {
	_, ok := transitions[transitionKey{from: current, action: action, role: role}]
	return ok
}

// NextState returns the state the action leads to from current under role.
func NextState(current State, action Action, role roles.Role) (State, bool) {
	next, ok := transitions[transitionKey{from: current, action: action, role: role}]
	return next, ok
}

// Actor identifies who performed a transition for the audit stamp. The
// display name is preferred; the subject identifier is the fallback.
type Actor struct {
	Subject     string
	DisplayName string
}

func (a Actor) stamp() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Subject
}

// timeNow is swapped in tests.
var timeNow = time.Now

// TransitionPayload builds the field update for an action: the new status
// plus the audit stamp columns for exactly that action. Unknown actions
// yield an empty map; callers must treat that as disallowed, never write it.
func TransitionPayload(action Action, actor Actor) map[string]interface{} {
	now := timeNow().UTC().Format(time.RFC3339)
	who := actor.stamp()

	switch action {
	case ActionSubmit:
		return map[string]interface{}{statusField: string(StateSubmitted), "submittedAt": now, "submittedBy": who}
	case ActionApprove:
		return map[string]interface{}{statusField: string(StateApproved), "approvedAt": now, "approvedBy": who}
	case ActionStart:
		return map[string]interface{}{statusField: string(StateInProgress), "startedAt": now, "startedBy": who}
	case ActionSendForSignoff:
		return map[string]interface{}{statusField: string(StateSentForSignoff), "signoffRequestedAt": now, "signoffRequestedBy": who}
	case ActionSignoff:
		return map[string]interface{}{statusField: string(StateSignedOff), "signedOffAt": now, "signedOffBy": who}
	case ActionReject:
		return map[string]interface{}{statusField: string(StateRejected), "rejectedAt": now, "rejectedBy": who}
	}
	return map[string]interface{}{}
}

// Document is a planner record viewed through the workflow lens.
type Document struct {
	RecordID string
	Status   State
}

// DocumentFromRecord reads the workflow view of a list record. A missing
// or empty status column means the document was never submitted and is
// treated as Draft.
func DocumentFromRecord(rec listaccess.Record) Document {
	status := State(rec.StringField(statusField))
	if status == "" {
		status = StateDraft
	}
	return Document{RecordID: rec.ID, Status: status}
}

// TransitionError reports a disallowed transition attempt.
type TransitionError struct {
	Current State
	Action  Action
	Role    roles.Role
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("workflow: %q not allowed from %q as %s", e.Action, e.Current, e.Role)
}

// Updater is the slice of the list access layer the engine writes through.
// Satisfied by *listaccess.Records.
type Updater interface {
	Update(ctx context.Context, listKey, id string, fields map[string]interface{}) (listaccess.Record, error)
}

// Engine applies workflow actions to lesson planner records, enforcing the
// transition rules before every write.
type Engine struct {
	store   Updater
	listKey string
}

// NewEngine creates an engine writing to the lesson planner list.
func NewEngine(store Updater) *Engine {
	return &Engine{store: store, listKey: config.ListLessonPlans}
}

// Apply checks the transition and, when legal, writes the status change and
// audit stamp to the document's record. Returns the document in its new
// state. An illegal transition returns a *TransitionError and performs no
// write.
func (e *Engine) Apply(ctx context.Context, doc Document, action Action, role roles.Role, actor Actor) (Document, error) {
	next, ok := NextState(doc.Status, action, role)
	if !ok {
		return doc, &TransitionError{Current: doc.Status, Action: action, Role: role}
	}

	payload := TransitionPayload(action, actor)
	if len(payload) == 0 {
		return doc, &TransitionError{Current: doc.Status, Action: action, Role: role}
	}

	if _, err := e.store.Update(ctx, e.listKey, doc.RecordID, payload); err != nil {
		return doc, err
	}

	doc.Status = next
	return doc, nil
}
