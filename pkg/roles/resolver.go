package roles

import (
	"context"
	"sort"
	"strings"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/identity"
	"github.com/stepup-hq/stepup/pkg/listaccess"
	"github.com/stepup-hq/stepup/pkg/observability"
)

// RoleStore is the slice of the list access layer the resolver needs.
// Satisfied by *listaccess.Records.
type RoleStore interface {
	FetchAll(ctx context.Context, listKey, extraQuery string) ([]listaccess.Record, error)
	Update(ctx context.Context, listKey, id string, fields map[string]interface{}) (listaccess.Record, error)
}

// Resolver derives the set of roles available to an identity and the single
// active role from the role list, with deterministic fallbacks. Role lookup
// failures never fail a session: the resolver degrades to a synthesized
// local role so the application stays usable against an unconfigured or
// unreachable role list.
type Resolver struct {
	store     RoleStore
	log       *observability.Logger
	pageSize  int
	devRole   string
	broadcast *Broadcaster
}

// NewResolver creates a resolver over the role list.
func NewResolver(store RoleStore, env *config.Environment, broadcast *Broadcaster, log *observability.Logger) *Resolver {
	if log == nil {
		log = observability.NewNopLogger()
	}
	pageSize := 500
	devRole := ""
	if env != nil {
		pageSize = env.RolePageSize
		devRole = env.DevOverrideRole
	}
	return &Resolver{
		store:     store,
		log:       log.Named("roles"),
		pageSize:  pageSize,
		devRole:   devRole,
		broadcast: broadcast,
	}
}

// Resolve builds a Session for the identity. A nil identity (unauthenticated
// or local development) yields a session with a synthesized role and a
// placeholder subject.
func (r *Resolver) Resolve(ctx context.Context, ident *identity.Identity) (*Session, error) {
	if ident == nil {
		sess := &Session{Subject: "local@local", DisplayName: "Local Dev"}
		r.synthesize(sess, "")
		return sess, nil
	}

	sess := &Session{Subject: ident.Subject, DisplayName: ident.DisplayName}

	candidates := r.fetchCandidates(ctx)
	matched := matchSubject(candidates, ident.Subject)

	if len(matched) == 0 {
		r.synthesize(sess, ident.Role)
		return sess, nil
	}

	sess.Available = matched
	sess.active = &sess.Available[chooseActive(matched)]
	return sess, nil
}

// fetchCandidates loads the first page of role assignment rows. Only the
// first page is consulted; deployments are expected to keep the role list
// below the configured page size. Retrieval failure degrades to an empty
// candidate set instead of failing the session.
func (r *Resolver) fetchCandidates(ctx context.Context) []Assignment {
	rows, err := r.store.FetchAll(ctx, config.ListUserRoles, listaccess.TopN(r.pageSize))
	if err != nil {
		r.log.WithError(err).Warn("role list fetch failed, continuing without candidates")
		return nil
	}

	candidates := make([]Assignment, 0, len(rows))
	for _, row := range rows {
		if a, ok := assignmentFromRecord(row); ok {
			candidates = append(candidates, a)
		}
	}
	return candidates
}

// matchSubject filters candidates for the subject: exact case-insensitive
// first, then a loose containment pass to absorb inconsistently formatted
// principal names.
func matchSubject(candidates []Assignment, subject string) []Assignment {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil
	}

	var matched []Assignment
	for _, a := range candidates {
		if strings.EqualFold(a.Subject, subject) {
			matched = append(matched, a)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	for _, a := range candidates {
		if looseMatch(a, subject) {
			matched = append(matched, a)
		}
	}
	return matched
}

func looseMatch(a Assignment, subject string) bool {
	s := strings.ToLower(subject)
	lp := localPart(subject)
	stored := strings.ToLower(a.Subject)
	display := strings.ToLower(a.DisplayName)

	if stored != "" && (strings.Contains(stored, s) || strings.Contains(s, stored)) {
		return true
	}
	if lp != "" {
		if stored != "" && strings.Contains(stored, lp) {
			return true
		}
		if display != "" && strings.Contains(display, lp) {
			return true
		}
	}
	return false
}

// chooseActive picks the active assignment: the default-flagged row first,
// then an educator row, then the first candidate after a deterministic sort
// (lexicographic by role, then record ID — the store guarantees no row
// ordering of its own).
func chooseActive(matched []Assignment) int {
	for i := range matched {
		if matched[i].IsDefault {
			return i
		}
	}
	for i := range matched {
		if matched[i].Role == RoleEducator {
			return i
		}
	}

	best := 0
	for i := 1; i < len(matched); i++ {
		if matched[i].Role < matched[best].Role ||
			(matched[i].Role == matched[best].Role && matched[i].RecordID < matched[best].RecordID) {
			best = i
		}
	}
	return best
}

// synthesize installs the single local fallback assignment: the dev
// override role, else the role claim from the token, else educator.
func (r *Resolver) synthesize(sess *Session, tokenRole string) {
	role := RoleEducator
	if parsed, ok := ParseRole(r.devRole); ok {
		role = parsed
	} else if parsed, ok := ParseRole(tokenRole); ok {
		role = parsed
	}

	r.log.WithFields(map[string]interface{}{
		"subject": sess.Subject,
		"role":    role,
	}).Info("no role assignment matched, synthesizing local role")

	sess.Available = []Assignment{{
		RecordID:    localRecordID,
		Role:        role,
		Subject:     sess.Subject,
		DisplayName: sess.DisplayName,
		IsDefault:   true,
	}}
	sess.active = &sess.Available[0]
}

// SetDefaultRole pins a role assignment row as the subject's default. The
// store does not enforce uniqueness of the default flag, so the operation
// self-heals: it clears the flag on every other row of the subject first,
// best-effort (a failed clear is logged and skipped, not fatal), then sets
// the target row. Clear failures leave at worst a stale duplicate that the
// next call repairs.
func (r *Resolver) SetDefaultRole(ctx context.Context, sess *Session, recordID string) error {
	rows, err := r.store.FetchAll(ctx, config.ListUserRoles, listaccess.TopN(r.pageSize))
	if err != nil {
		r.log.WithError(err).Warn("role list fetch failed before default-role update")
		rows = nil
	}

	for _, row := range rows {
		a, ok := assignmentFromRecord(row)
		if !ok || a.RecordID == recordID || !a.IsDefault {
			continue
		}
		if !strings.EqualFold(a.Subject, sess.Subject) {
			continue
		}
		if _, err := r.store.Update(ctx, config.ListUserRoles, a.RecordID, map[string]interface{}{
			defaultRoleField: false,
		}); err != nil {
			r.log.WithError(err).WithField("record", a.RecordID).
				Warn("failed to clear previous default role")
		}
	}

	if _, err := r.store.Update(ctx, config.ListUserRoles, recordID, map[string]interface{}{
		defaultRoleField: true,
	}); err != nil {
		return err
	}

	if r.broadcast != nil {
		r.broadcast.Notify()
	}
	return nil
}

// WatchRefresh re-resolves the session whenever the refresh signal fires,
// delivering each new session to fn. Blocks until ctx is done. No-op when
// the resolver has no broadcaster.
func (r *Resolver) WatchRefresh(ctx context.Context, ident *identity.Identity, fn func(*Session)) {
	if r.broadcast == nil {
		<-ctx.Done()
		return
	}

	ch, cancel := r.broadcast.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			sess, err := r.Resolve(ctx, ident)
			if err != nil {
				r.log.WithError(err).Warn("role refresh failed")
				continue
			}
			fn(sess)
		}
	}
}

// SortAssignments orders assignments deterministically for display:
// lexicographic by role, then record ID.
func SortAssignments(assignments []Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].Role != assignments[j].Role {
			return assignments[i].Role < assignments[j].Role
		}
		return assignments[i].RecordID < assignments[j].RecordID
	})
}
