package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stepup-hq/stepup/pkg/observability"
)

// Semantic list keys understood by the list access layer. The remote list
// identifiers they map to are deployment-specific and come from the
// environment.
const (
	ListStudents          = "students"
	ListUserRoles         = "userRoles"
	ListAssessments       = "assessments"
	ListLeaves            = "leaves"
	ListLessonPlans       = "lessonPlans"
	ListActivities        = "activities"
	ListAttendance        = "attendance"
	ListParticipation     = "participation"
	ListInterventions     = "interventions"
	ListMilestones        = "milestones"
	ListInterventionTasks = "interventionTasks"
)

// ListKeys enumerates every semantic list key in a fixed order.
var ListKeys = []string{
	ListStudents,
	ListUserRoles,
	ListAssessments,
	ListLeaves,
	ListLessonPlans,
	ListActivities,
	ListAttendance,
	ListParticipation,
	ListInterventions,
	ListMilestones,
	ListInterventionTasks,
}

// Environment holds all application configuration. It is loaded once at
// process start and passed explicitly to every component that needs it;
// nothing in the module reads ambient process state after Load returns.
type Environment struct {
	// Site configuration for the remote list store
	Site SiteConfig

	// Identity provider configuration
	Identity IdentityConfig

	// DevOverrideRole forces the synthesized fallback role when no role
	// assignment matches the signed-in subject. Intended for local
	// development against an unconfigured role list only.
	DevOverrideRole string

	// RolePageSize bounds the first-page fetch of role assignment rows.
	RolePageSize int

	// LogLevel controls structured log verbosity.
	LogLevel observability.LogLevel
}

// SiteConfig identifies the remote list store site and its lists.
type SiteConfig struct {
	// BaseURL is the root of the list store API.
	BaseURL string

	// SiteID identifies the site that owns the lists.
	SiteID string

	// Lists maps semantic list keys to remote list identifiers.
	Lists map[string]string
}

// IdentityConfig holds OAuth2/OIDC identity provider settings.
type IdentityConfig struct {
	// IssuerURL is the OIDC issuer. When empty it is derived from TenantID.
	IssuerURL string

	// TenantID selects the directory tenant when IssuerURL is not set.
	TenantID string

	ClientID    string
	RedirectURL string

	// Scopes requested on every token acquisition: profile read plus full
	// read/write on the list store site.
	Scopes []string

	// AccountFile is where the active account checkpoint is persisted
	// between process runs.
	AccountFile string
}

// DefaultScopes is the scope set requested when none is configured.
var DefaultScopes = []string{
	"openid",
	"profile",
	"offline_access",
	"User.Read",
	"User.ReadBasic.All",
	"Sites.ReadWrite.All",
}

// Load reads configuration from STEPUP_* environment variables and
// validates it.
func Load() (*Environment, error) {
	env := &Environment{
		Site:            loadSiteConfig(),
		Identity:        loadIdentityConfig(),
		DevOverrideRole: getEnv("STEPUP_DEV_ROLE", ""),
		RolePageSize:    getEnvInt("STEPUP_ROLE_PAGE_SIZE", 500),
		LogLevel:        observability.ParseLogLevel(getEnv("STEPUP_LOG_LEVEL", "info")),
	}

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return env, nil
}

// loadSiteConfig loads list store configuration from environment
func loadSiteConfig() SiteConfig {
	cfg := SiteConfig{
		BaseURL: getEnv("STEPUP_GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		SiteID:  getEnv("STEPUP_SITE_ID", ""),
		Lists:   map[string]string{},
	}

	// Bulk JSON mapping first, per-list variables as fallback
	if raw := getEnv("STEPUP_LISTS_JSON", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Lists); err != nil {
			cfg.Lists = map[string]string{}
		}
	}
	for _, key := range ListKeys {
		if cfg.Lists[key] != "" {
			continue
		}
		if id := getEnv("STEPUP_LIST_"+strings.ToUpper(key), ""); id != "" {
			cfg.Lists[key] = id
		}
	}

	return cfg
}

// loadIdentityConfig loads identity provider configuration from environment
func loadIdentityConfig() IdentityConfig {
	cfg := IdentityConfig{
		IssuerURL:   getEnv("STEPUP_ISSUER_URL", ""),
		TenantID:    getEnv("STEPUP_TENANT_ID", "common"),
		ClientID:    getEnv("STEPUP_CLIENT_ID", ""),
		RedirectURL: getEnv("STEPUP_REDIRECT_URL", ""),
		AccountFile: getEnv("STEPUP_ACCOUNT_FILE", defaultAccountFile()),
	}

	if raw := getEnv("STEPUP_SCOPES", ""); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Scopes = append(cfg.Scopes, s)
			}
		}
	} else {
		cfg.Scopes = append(cfg.Scopes, DefaultScopes...)
	}

	if cfg.IssuerURL == "" {
		cfg.IssuerURL = fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", cfg.TenantID)
	}

	return cfg
}

func defaultAccountFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stepup-account.json"
	}
	return home + "/.stepup/account.json"
}

// Validate checks if the configuration is valid
func (e *Environment) Validate() error {
	if e.Site.BaseURL == "" {
		return fmt.Errorf("list store base URL is required")
	}
	if e.Site.SiteID == "" {
		return fmt.Errorf("site ID is required")
	}
	if e.RolePageSize <= 0 {
		return fmt.Errorf("role page size must be positive")
	}

	if e.Identity.ClientID != "" {
		if e.Identity.RedirectURL == "" {
			return fmt.Errorf("redirect URL is required when a client ID is configured")
		}
		hasOpenID := false
		for _, scope := range e.Identity.Scopes {
			if scope == "openid" {
				hasOpenID = true
				break
			}
		}
		if !hasOpenID {
			return fmt.Errorf("'openid' scope is required")
		}
	}

	if e.DevOverrideRole != "" && e.Identity.ClientID != "" {
		return fmt.Errorf("dev role override cannot be combined with a configured identity provider")
	}

	return nil
}

// ListID resolves a semantic list key to its remote list identifier.
func (s SiteConfig) ListID(key string) (string, bool) {
	id, ok := s.Lists[key]
	return id, ok && id != ""
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
