package identity

import "strings"

// Claim names consulted for each Identity field, highest priority first.
// Directory tenants are inconsistent about which of these they populate, so
// the priority order is fixed here rather than probed dynamically.
var (
	subjectClaims     = []string{"preferred_username", "upn", "unique_name", "email", "sub"}
	displayNameClaims = []string{"name"}
)

// FromClaims normalizes a raw claim map into an Identity.
//
// Subject: preferred_username > upn > unique_name > email > sub.
// DisplayName: name > given_name + family_name > preferred_username.
// Role: role > first entry of roles.
func FromClaims(claims map[string]interface{}) Identity {
	ident := Identity{}

	for _, c := range subjectClaims {
		if v := getStringValue(claims, c); v != "" {
			ident.Subject = strings.TrimSpace(v)
			break
		}
	}

	for _, c := range displayNameClaims {
		if v := getStringValue(claims, c); v != "" {
			ident.DisplayName = strings.TrimSpace(v)
			break
		}
	}
	if ident.DisplayName == "" {
		given := getStringValue(claims, "given_name")
		family := getStringValue(claims, "family_name")
		ident.DisplayName = strings.TrimSpace(given + " " + family)
	}
	if ident.DisplayName == "" {
		ident.DisplayName = getStringValue(claims, "preferred_username")
	}

	if v := getStringValue(claims, "role"); v != "" {
		ident.Role = v
	} else if roles := getArrayValue(claims, "roles"); len(roles) > 0 {
		ident.Role = roles[0]
	}

	return ident
}

// getStringValue extracts a string claim value
func getStringValue(claims map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// getArrayValue extracts a string array claim value
func getArrayValue(claims map[string]interface{}, key string) []string {
	if key == "" {
		return nil
	}
	raw, ok := claims[key]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}
