package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STEPUP_SITE_ID", "contoso.sharepoint.com,abc,def")
	t.Setenv("STEPUP_LISTS_JSON", `{"userRoles":"list-roles","students":"list-students"}`)
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	env, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://graph.microsoft.com/v1.0", env.Site.BaseURL)
	assert.Equal(t, "contoso.sharepoint.com,abc,def", env.Site.SiteID)
	assert.Equal(t, 500, env.RolePageSize)
	assert.Empty(t, env.DevOverrideRole)
	assert.Equal(t, DefaultScopes, env.Identity.Scopes)
	assert.Equal(t, "https://login.microsoftonline.com/common/v2.0", env.Identity.IssuerURL)
}

func TestLoad_ListMapping(t *testing.T) {
	tests := []struct {
		name     string
		envs     map[string]string
		key      string
		wantID   string
		wantOK   bool
	}{
		{
			name:   "from JSON mapping",
			envs:   map[string]string{"STEPUP_LISTS_JSON": `{"students":"s-1"}`},
			key:    ListStudents,
			wantID: "s-1",
			wantOK: true,
		},
		{
			name: "per-list variable fallback",
			envs: map[string]string{
				"STEPUP_LISTS_JSON":      `{"students":"s-1"}`,
				"STEPUP_LIST_USERROLES":  "r-1",
				"STEPUP_LIST_MILESTONES": "m-1",
			},
			key:    ListUserRoles,
			wantID: "r-1",
			wantOK: true,
		},
		{
			name:   "JSON mapping wins over per-list variable",
			envs:   map[string]string{"STEPUP_LISTS_JSON": `{"students":"s-json"}`, "STEPUP_LIST_STUDENTS": "s-var"},
			key:    ListStudents,
			wantID: "s-json",
			wantOK: true,
		},
		{
			name:   "unmapped key",
			envs:   map[string]string{"STEPUP_LISTS_JSON": `{"students":"s-1"}`},
			key:    ListLeaves,
			wantOK: false,
		},
		{
			name:   "malformed JSON ignored",
			envs:   map[string]string{"STEPUP_LISTS_JSON": `{not json`, "STEPUP_LIST_STUDENTS": "s-var"},
			key:    ListStudents,
			wantID: "s-var",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STEPUP_SITE_ID", "site")
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}

			env, err := Load()
			require.NoError(t, err)

			id, ok := env.Site.ListID(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		errMsg  string
	}{
		{
			name:   "missing site ID",
			envs:   map[string]string{},
			errMsg: "site ID is required",
		},
		{
			name: "client ID without redirect URL",
			envs: map[string]string{
				"STEPUP_SITE_ID":   "site",
				"STEPUP_CLIENT_ID": "client-1",
			},
			errMsg: "redirect URL is required",
		},
		{
			name: "scopes without openid",
			envs: map[string]string{
				"STEPUP_SITE_ID":      "site",
				"STEPUP_CLIENT_ID":    "client-1",
				"STEPUP_REDIRECT_URL": "https://app.example.com/",
				"STEPUP_SCOPES":       "profile,Sites.ReadWrite.All",
			},
			errMsg: "'openid' scope is required",
		},
		{
			name: "dev override with real identity provider",
			envs: map[string]string{
				"STEPUP_SITE_ID":      "site",
				"STEPUP_CLIENT_ID":    "client-1",
				"STEPUP_REDIRECT_URL": "https://app.example.com/",
				"STEPUP_DEV_ROLE":     "supervisor",
			},
			errMsg: "dev role override",
		},
		{
			name: "non-positive page size",
			envs: map[string]string{
				"STEPUP_SITE_ID":        "site",
				"STEPUP_ROLE_PAGE_SIZE": "0",
			},
			errMsg: "role page size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_CustomScopes(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STEPUP_CLIENT_ID", "client-1")
	t.Setenv("STEPUP_REDIRECT_URL", "https://app.example.com/")
	t.Setenv("STEPUP_SCOPES", "openid, profile ,Sites.ReadWrite.All")

	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"openid", "profile", "Sites.ReadWrite.All"}, env.Identity.Scopes)
}
