// Package config loads and validates StepUp configuration from environment
// variables.
//
// # Overview
//
// Configuration is read once at process start via Load and passed down
// explicitly as an *Environment. Business logic never reads environment
// variables or other ambient state directly; development overrides have a
// documented home (Environment.DevOverrideRole) instead of scattered debug
// flags.
//
// # Environment Variables
//
// All variables use the STEPUP_ prefix:
//
//	STEPUP_SITE_ID          - remote list store site identifier (required)
//	STEPUP_GRAPH_BASE_URL   - list store API root (default: Graph v1.0)
//	STEPUP_LISTS_JSON       - JSON object mapping list keys to list IDs
//	STEPUP_LIST_<KEY>       - per-list fallback, e.g. STEPUP_LIST_USERROLES
//	STEPUP_ISSUER_URL       - OIDC issuer (or derived from STEPUP_TENANT_ID)
//	STEPUP_CLIENT_ID        - OAuth2 client ID
//	STEPUP_REDIRECT_URL     - interactive login redirect target
//	STEPUP_SCOPES           - comma-separated scopes (fixed default set)
//	STEPUP_ACCOUNT_FILE     - account checkpoint path
//	STEPUP_DEV_ROLE         - fallback role override for local development
//	STEPUP_ROLE_PAGE_SIZE   - bound on the role list first-page fetch
//	STEPUP_LOG_LEVEL        - debug, info, warn, error
//
// # Usage
//
//	env, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	listID, ok := env.Site.ListID(config.ListUserRoles)
package config
