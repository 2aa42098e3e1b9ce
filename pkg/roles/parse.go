package roles

import (
	"strings"

	"github.com/stepup-hq/stepup/pkg/listaccess"
)

// Role list field names, in the priority order they are consulted. The list
// predates consistent naming, so older rows carry the subject in Title.
var (
	roleFields    = []string{"Role", "Roles"}
	subjectFields = []string{"UserPrincipalName", "Title"}
)

const (
	displayNameField = "DisplayName"
	defaultRoleField = "DefaultRole"
)

// parseDefaultFlag accepts the default-role marker in every shape the list
// has historically held: boolean, "Yes", "True", "1".
func parseDefaultFlag(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "yes" || s == "true" || s == "1"
	case float64:
		return v == 1
	}
	return false
}

// assignmentFromRecord normalizes one role list row. Rows without a
// recognizable role are dropped.
func assignmentFromRecord(rec listaccess.Record) (Assignment, bool) {
	var role Role
	for _, f := range roleFields {
		if parsed, ok := ParseRole(rec.StringField(f)); ok {
			role = parsed
			break
		}
	}
	if role == "" {
		return Assignment{}, false
	}

	var subject string
	for _, f := range subjectFields {
		if v := strings.TrimSpace(rec.StringField(f)); v != "" {
			subject = v
			break
		}
	}

	return Assignment{
		RecordID:    rec.ID,
		Role:        role,
		Subject:     subject,
		DisplayName: rec.StringField(displayNameField),
		IsDefault:   parseDefaultFlag(rec.Field(defaultRoleField)),
	}, true
}

// localPart returns the part of a principal name before the @, lowercased.
func localPart(subject string) string {
	s := strings.ToLower(subject)
	if i := strings.IndexByte(s, '@'); i > 0 {
		return s[:i]
	}
	return s
}
